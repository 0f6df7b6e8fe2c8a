package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"storefront-client/internal/api"
	"storefront-client/internal/cart"
	"storefront-client/internal/catalog"
	"storefront-client/internal/checkout"
	"storefront-client/internal/config"
	"storefront-client/internal/domain"
	"storefront-client/internal/drafts"
	"storefront-client/internal/log"
	"storefront-client/internal/pagination"
	"storefront-client/internal/profile"
	"storefront-client/internal/session"
	"storefront-client/internal/storage"
)

// app bundles the wired stores and views behind the command loop.
type app struct {
	logger  zerolog.Logger
	storage *storage.Store
	api     *api.Client
	session *session.Store
	cart    *cart.Store
	catalog *catalog.View
	scroll  *pagination.Scroller
	visible *pagination.ManualVisibility
	profile *profile.View
	drafts  *drafts.Store
	draft   *checkout.Draft
	editor  *checkout.QuantityEditor
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := log.New(cfg.Environment)

	st, err := storage.Open(cfg.Storage.Dir, cfg.Storage.File, cfg.Storage.PollInterval)
	if err != nil {
		logger.Fatal().Err(err).Msg("open client storage")
	}

	client := api.New(cfg.API.BaseURL, cfg.API.Timeout, st, logger)
	sess := session.New(client, st, logger)
	cartStore := cart.New(client, st, sess.ForceLogout, logger)
	catalogView := catalog.New(client, cartStore, cfg.Paging.CatalogSize)
	profileView := profile.New(client, cfg.Paging.ProfileSize)
	draftStore := drafts.New(st)

	promo := checkout.NewPromoField(client, cfg.Debounce.Promo)
	draft := checkout.NewDraft(client, cartStore, promo)
	editor := checkout.NewQuantityEditor(cartStore, draft, cfg.Debounce.Quantity, func(err error) {
		logger.Warn().Err(err).Msg("quantity edit rejected, reverting")
	})
	defer editor.Stop()

	visible := pagination.NewManualVisibility()
	scroll := pagination.NewScroller(visible, catalogView.Cursor, cfg.Debounce.Scroll, func(err error) {
		logger.Warn().Err(err).Msg("load next catalog page")
	})
	defer scroll.Close()

	// Other processes sharing the storage file change the session under us.
	done := make(chan struct{})
	defer close(done)
	go sess.WatchStorage(done)

	a := &app{
		logger:  logger,
		storage: st,
		api:     client,
		session: sess,
		cart:    cartStore,
		catalog: catalogView,
		scroll:  scroll,
		visible: visible,
		profile: profileView,
		drafts:  draftStore,
		draft:   draft,
		editor:  editor,
	}
	a.run()
}

func (a *app) run() {
	ctx := context.Background()
	fmt.Println("storefront - type 'help' for commands")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return
		}
		if err := a.dispatch(ctx, fields[0], fields[1:]); err != nil {
			fmt.Println("error:", err)
		}
	}
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		printHelp()
		return nil
	case "register":
		if len(args) < 3 {
			return fmt.Errorf("usage: register <username> <email> <password> [referral]")
		}
		referral := ""
		if len(args) > 3 {
			referral = args[3]
		}
		if err := a.session.Register(ctx, args[0], args[1], args[2], referral); err != nil {
			return err
		}
		fmt.Println("registered as", args[1])
		return nil
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("usage: login <email> <password>")
		}
		if err := a.session.Login(ctx, args[0], args[1]); err != nil {
			return err
		}
		return a.cart.FetchCart(ctx)
	case "logout":
		a.session.Logout(ctx)
		fmt.Println("logged out")
		return nil
	case "whoami":
		snap := a.session.Snapshot()
		if !snap.Authenticated {
			fmt.Println("anonymous")
			return nil
		}
		fmt.Printf("%s <%s> role=%s\n", snap.Identity.Username, snap.Identity.Email, snap.Identity.Role)
		return nil
	case "search":
		a.catalog.SetFilters(catalog.Filters{SearchTerm: strings.Join(args, " ")})
		if err := a.catalog.LoadNext(ctx); err != nil {
			return err
		}
		a.printProducts()
		return nil
	case "products":
		if len(a.catalog.Products()) == 0 {
			if err := a.catalog.LoadNext(ctx); err != nil {
				return err
			}
		}
		a.printProducts()
		return nil
	case "next":
		// Simulates the listing tail coming into view.
		a.visible.Trigger()
		a.waitForCatalog()
		a.printProducts()
		return nil
	case "add":
		if len(args) != 1 {
			return fmt.Errorf("usage: add <productID>")
		}
		for _, p := range a.catalog.Products() {
			if p.ID == args[0] {
				return a.catalog.AddToCart(ctx, p)
			}
		}
		return a.cart.AddToCart(ctx, domain.Product{ID: args[0]})
	case "cart":
		a.printCart()
		return nil
	case "qty":
		if len(args) != 2 {
			return fmt.Errorf("usage: qty <productID> <quantity>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantity must be a number")
		}
		a.editor.SetQuantity(ctx, args[0], n)
		a.waitForQuantity(args[0])
		a.printCart()
		return nil
	case "rm":
		if len(args) != 1 {
			return fmt.Errorf("usage: rm <productID>")
		}
		return a.cart.RemoveFromCart(ctx, args[0])
	case "clear":
		return a.cart.ClearCart(ctx)
	case "promo":
		code := ""
		if len(args) > 0 {
			code = args[0]
		}
		a.draft.Promo.SetCode(ctx, code)
		a.waitForPromo()
		fmt.Println(promoStatus(a.draft.Promo))
		return nil
	case "address":
		a.draft.SetDeliveryAddress(strings.Join(args, " "))
		return nil
	case "insurance":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return fmt.Errorf("usage: insurance on|off")
		}
		a.draft.SetInsurance(args[0] == "on")
		return nil
	case "total":
		a.refreshLoyalty(ctx)
		a.printBreakdown()
		return nil
	case "checkout":
		a.refreshLoyalty(ctx)
		order, err := a.draft.Submit(ctx)
		if err != nil {
			return err
		}
		fmt.Println("order placed:", order.ID)
		return nil
	case "orders":
		return printCursor(ctx, a.profile.Orders(), func(o domain.Order) string {
			return fmt.Sprintf("%s  %s  %s  %s", o.ID, o.Status, o.TotalPrice.StringFixed(2), o.CreatedAt.Format(time.DateOnly))
		})
	case "shipments":
		return printCursor(ctx, a.profile.Shipments(), func(s domain.Shipment) string {
			return fmt.Sprintf("%s  order=%s  %s", s.ID, s.OrderID, s.Status)
		})
	case "cargos":
		return printCursor(ctx, a.profile.BatchCargos(), func(c domain.BatchCargo) string {
			return fmt.Sprintf("%s  %s  %d orders", c.ID, c.Status, len(c.OrderIDs))
		})
	case "referrals":
		return printCursor(ctx, a.profile.Referrals(), func(r domain.Referral) string {
			return fmt.Sprintf("%s  rewarded=%t", r.Email, r.Rewarded)
		})
	case "loyalty":
		loy, err := a.profile.Loyalty(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d points, tier %s, %s%% off\n", loy.Points, loy.Tier, loy.DiscountPercent.String())
		return nil
	case "cards":
		methods, err := a.profile.PaymentMethods(ctx)
		if err != nil {
			return err
		}
		for _, m := range methods {
			fmt.Printf("%s  %s ****%s default=%t\n", m.ID, m.Label, m.Last4, m.Default)
		}
		return nil
	case "draft":
		return a.handleDraft(args)
	default:
		return fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
}

func (a *app) handleDraft(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: draft list | draft add <name> <price> [description] | draft rm <id>")
	}
	switch args[0] {
	case "list":
		items, err := a.drafts.List()
		if err != nil {
			return err
		}
		for _, d := range items {
			fmt.Printf("%s  %s  %s\n", d.ID, d.Name, d.Price.StringFixed(2))
		}
		return nil
	case "add":
		if len(args) < 3 {
			return fmt.Errorf("usage: draft add <name> <price> [description]")
		}
		price, err := decimal.NewFromString(args[2])
		if err != nil {
			return fmt.Errorf("price must be a number")
		}
		d, err := a.drafts.Add(args[1], price, strings.Join(args[3:], " "))
		if err != nil {
			return err
		}
		fmt.Println("saved draft", d.ID)
		return nil
	case "rm":
		if len(args) != 2 {
			return fmt.Errorf("usage: draft rm <id>")
		}
		return a.drafts.Remove(args[1])
	default:
		return fmt.Errorf("unknown draft subcommand %q", args[0])
	}
}

func (a *app) refreshLoyalty(ctx context.Context) {
	loy, err := a.profile.Loyalty(ctx)
	if err != nil {
		a.logger.Debug().Err(err).Msg("loyalty unavailable, pricing without user discount")
		return
	}
	a.draft.SetLoyaltyPercent(loy.DiscountPercent)
}

// waitForCatalog blocks until the debounced scroll load settles.
func (a *app) waitForCatalog() {
	deadline := time.Now().Add(5 * time.Second)
	time.Sleep(50 * time.Millisecond)
	for time.Now().Before(deadline) {
		if !a.catalog.Cursor.Loading() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// waitForQuantity blocks until the debounced cart sync for the line settles.
func (a *app) waitForQuantity(productID string) {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, pending := a.draft.PendingQuantity(productID); !pending {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func (a *app) waitForPromo() {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if a.draft.Promo.State() != checkout.PromoValidating {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func (a *app) printProducts() {
	for _, p := range a.catalog.Products() {
		fmt.Printf("%s  %-22s %8s  %s\n", p.ID, p.Name, p.Price.StringFixed(2), p.Category)
	}
	if !a.catalog.Cursor.HasMore() {
		fmt.Println("(end of listing)")
	}
}

func (a *app) printCart() {
	items := a.cart.Items()
	if len(items) == 0 {
		fmt.Println("cart is empty")
		return
	}
	for _, it := range items {
		fmt.Printf("%s  %-22s %8s x%d = %s\n",
			it.ProductID, it.Name, it.UnitPrice.StringFixed(2), it.Quantity, it.LineTotal().StringFixed(2))
	}
}

func (a *app) printBreakdown() {
	b := a.draft.Breakdown()
	fmt.Printf("line total      %10s\n", b.LineTotal.StringFixed(2))
	fmt.Printf("user discount  -%10s\n", b.UserDiscount.StringFixed(2))
	fmt.Printf("promo discount -%10s\n", b.PromoDiscount.StringFixed(2))
	fmt.Printf("insurance      +%10s\n", b.Insurance.StringFixed(2))
	fmt.Printf("final total     %10s\n", b.FinalTotal.StringFixed(2))
}

func promoStatus(p *checkout.PromoField) string {
	switch p.State() {
	case checkout.PromoEmpty:
		return "promo cleared"
	case checkout.PromoValidating:
		return "still validating"
	case checkout.PromoValid:
		d, _ := p.Applied()
		return fmt.Sprintf("applied %s (%s %s)", d.Code, d.Type, d.Value.String())
	default:
		return "invalid: " + p.Message()
	}
}

func printCursor[T any](ctx context.Context, c *pagination.Cursor[T], line func(T) string) error {
	if err := c.LoadNext(ctx); err != nil {
		return err
	}
	items := c.Items()
	if len(items) == 0 {
		fmt.Println("(nothing here yet)")
		return nil
	}
	for _, it := range items {
		fmt.Println(line(it))
	}
	if !c.HasMore() {
		fmt.Println("(end of listing)")
	}
	return nil
}

func printHelp() {
	fmt.Print(`session:   register <user> <email> <pass> [referral] | login <email> <pass> | logout | whoami
catalog:   search <term> | products | next | add <productID>
cart:      cart | qty <id> <n> | rm <id> | clear
checkout:  promo <code> | address <text> | insurance on|off | total | checkout
profile:   orders | shipments | cargos | referrals | loyalty | cards
drafts:    draft list | draft add <name> <price> [description] | draft rm <id>
other:     help | quit
`)
}
