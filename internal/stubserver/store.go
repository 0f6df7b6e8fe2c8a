package stubserver

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-client/internal/domain"
)

type user struct {
	Email        string
	Username     string
	PasswordHash []byte
	Role         domain.Role
}

type cartLine struct {
	ProductID string
	Quantity  int
}

// Store is the stub backend's in-memory state. It exists so the storefront
// can be developed and integration-tested without the real backend; nothing
// here survives a restart.
type Store struct {
	mu        sync.Mutex
	users     map[string]*user
	carts     map[string][]cartLine
	orders    map[string][]domain.Order
	products  []domain.Product
	promos    map[string]domain.PromoDiscount
	loyalty   map[string]domain.Loyalty
	referrals map[string][]domain.Referral
	shipments map[string][]domain.Shipment
	cargos    map[string][]domain.BatchCargo
}

// NewStore builds the state with a seeded catalog and promo codes.
func NewStore() *Store {
	s := &Store{
		users:     make(map[string]*user),
		carts:     make(map[string][]cartLine),
		orders:    make(map[string][]domain.Order),
		promos:    make(map[string]domain.PromoDiscount),
		loyalty:   make(map[string]domain.Loyalty),
		referrals: make(map[string][]domain.Referral),
		shipments: make(map[string][]domain.Shipment),
		cargos:    make(map[string][]domain.BatchCargo),
	}
	s.seed()
	return s
}

func (s *Store) seed() {
	names := []struct {
		name     string
		price    string
		category string
	}{
		{"Desk Lamp", "19.99", "home"},
		{"Mechanical Keyboard", "89.00", "electronics"},
		{"Ceramic Mug", "7.50", "home"},
		{"Wool Blanket", "45.00", "home"},
		{"USB-C Hub", "32.99", "electronics"},
		{"Notebook", "4.25", "office"},
		{"Fountain Pen", "28.00", "office"},
		{"Espresso Beans", "14.80", "food"},
		{"Travel Tumbler", "21.00", "home"},
		{"Monitor Stand", "54.90", "electronics"},
		{"Desk Mat", "18.00", "office"},
		{"Cable Organizer", "6.99", "electronics"},
	}
	for i, n := range names {
		price, _ := decimal.NewFromString(n.price)
		s.products = append(s.products, domain.Product{
			ID:       fmt.Sprintf("p-%03d", i+1),
			Name:     n.name,
			Price:    price,
			Category: n.category,
			InStock:  true,
		})
	}
	s.promos["SAVE10"] = domain.PromoDiscount{Code: "SAVE10", Type: domain.DiscountPercentage, Value: decimal.NewFromInt(10)}
	s.promos["WELCOME5"] = domain.PromoDiscount{Code: "WELCOME5", Type: domain.DiscountFixed, Value: decimal.NewFromInt(5)}
}

func (s *Store) createUser(email, username string, hash []byte, referredBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		return fmt.Errorf("email already registered")
	}
	s.users[email] = &user{Email: email, Username: username, PasswordHash: hash, Role: domain.RoleUser}
	if referredBy != "" {
		for _, u := range s.users {
			if strings.EqualFold(u.Username, referredBy) {
				s.referrals[u.Email] = append(s.referrals[u.Email], domain.Referral{
					Email:     email,
					CreatedAt: time.Now(),
				})
				break
			}
		}
	}
	return nil
}

func (s *Store) getUser(email string) (*user, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	return u, ok
}

func (s *Store) findProduct(id string) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// renderCart joins the stored lines with the catalog so prices and names in
// the response are always the server's, never the client's.
func (s *Store) renderCart(email string) []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderCartLocked(email)
}

func (s *Store) renderCartLocked(email string) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(s.carts[email]))
	for _, line := range s.carts[email] {
		for _, p := range s.products {
			if p.ID == line.ProductID {
				out = append(out, domain.LineItem{
					ProductID: p.ID,
					Name:      p.Name,
					UnitPrice: p.Price,
					Quantity:  line.Quantity,
				})
				break
			}
		}
	}
	return out
}

func (s *Store) replaceCart(email string, lines []cartLine) ([]domain.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]cartLine, 0, len(lines))
	seen := make(map[string]bool)
	for _, line := range lines {
		if line.ProductID == "" || line.Quantity < 1 || seen[line.ProductID] {
			continue
		}
		found := false
		for _, p := range s.products {
			if p.ID == line.ProductID {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown product %s", line.ProductID)
		}
		seen[line.ProductID] = true
		merged = append(merged, line)
	}
	s.carts[email] = merged
	return s.renderCartLocked(email), nil
}

func (s *Store) removeCartItem(email, productID string) []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.carts[email][:0]
	for _, line := range s.carts[email] {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	s.carts[email] = kept
	return s.renderCartLocked(email)
}

func (s *Store) clearCart(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, email)
}

func (s *Store) validatePromo(code string) (domain.PromoDiscount, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	promo, ok := s.promos[strings.ToUpper(code)]
	return promo, ok
}

func (s *Store) createOrder(email string, req domain.OrderRequest) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.renderCartLocked(email)
	if len(items) == 0 {
		return domain.Order{}, fmt.Errorf("cart is empty")
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return domain.Order{}, fmt.Errorf("delivery address required")
	}

	order := domain.Order{
		ID:              uuid.NewString(),
		Items:           items,
		TotalPrice:      req.TotalClientPrice,
		DeliveryAddress: req.DeliveryAddress,
		PromoCode:       req.PromoCode,
		Insurance:       req.Insurance,
		Status:          "CREATED",
		CreatedAt:       time.Now(),
	}
	s.orders[email] = append(s.orders[email], order)
	delete(s.carts, email)
	s.shipments[email] = append(s.shipments[email], domain.Shipment{
		ID:        uuid.NewString(),
		OrderID:   order.ID,
		Status:    "PENDING",
		UpdatedAt: time.Now(),
	})
	return order, nil
}

func (s *Store) listOrders(email string, page, size int) ([]domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return paginate(s.orders[email], page, size)
}

func (s *Store) listShipments(email string, page, size int) ([]domain.Shipment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return paginate(s.shipments[email], page, size)
}

func (s *Store) listCargos(email string, page, size int) ([]domain.BatchCargo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return paginate(s.cargos[email], page, size)
}

func (s *Store) listReferrals(email string, page, size int) ([]domain.Referral, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return paginate(s.referrals[email], page, size)
}

func (s *Store) getLoyalty(email string) domain.Loyalty {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loyalty[email]
}

// paginate slices a 1-based page out of items and reports whether it is the
// last one.
func paginate[T any](items []T, page, size int) ([]T, bool) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	start := (page - 1) * size
	if start >= len(items) {
		return nil, true
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return append([]T(nil), items[start:end]...), end == len(items)
}

type productFilter struct {
	searchTerm string
	minPrice   *decimal.Decimal
	maxPrice   *decimal.Decimal
	sortBy     string
}

// filterProducts applies the catalog filters and returns a 0-based page plus
// the total page count.
func (s *Store) filterProducts(f productFilter, page, size int) ([]domain.Product, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if f.searchTerm != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.searchTerm)) {
			continue
		}
		if f.minPrice != nil && p.Price.LessThan(*f.minPrice) {
			continue
		}
		if f.maxPrice != nil && p.Price.GreaterThan(*f.maxPrice) {
			continue
		}
		matched = append(matched, p)
	}

	switch f.sortBy {
	case "price":
		sort.Slice(matched, func(i, j int) bool { return matched[i].Price.LessThan(matched[j].Price) })
	case "name":
		sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	}

	if size < 1 {
		size = 10
	}
	totalPages := (len(matched) + size - 1) / size
	if page < 0 {
		page = 0
	}
	start := page * size
	if start >= len(matched) {
		return nil, totalPages
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], totalPages
}
