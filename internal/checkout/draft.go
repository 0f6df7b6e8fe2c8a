package checkout

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"storefront-client/internal/domain"
)

type orderAPI interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error)
}

type cartSource interface {
	Items() []domain.LineItem
	FetchCart(ctx context.Context) error
}

// Draft is the ephemeral checkout state: delivery address, insurance flag,
// promo field and pending quantity edits. It is constructed when checkout
// opens and reset on successful submission or dismissal; it is never
// persisted between sessions.
type Draft struct {
	api   orderAPI
	cart  cartSource
	Promo *PromoField

	mu              sync.Mutex
	deliveryAddress string
	insurance       bool
	pendingEdits    map[string]int
	loyaltyPercent  decimal.Decimal
}

// NewDraft builds a checkout draft over the given cart.
func NewDraft(api orderAPI, cart cartSource, promo *PromoField) *Draft {
	return &Draft{
		api:          api,
		cart:         cart,
		Promo:        promo,
		pendingEdits: make(map[string]int),
	}
}

// SetDeliveryAddress records the delivery address.
func (d *Draft) SetDeliveryAddress(addr string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deliveryAddress = strings.TrimSpace(addr)
}

// SetInsurance toggles the insurance surcharge.
func (d *Draft) SetInsurance(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.insurance = on
}

// SetLoyaltyPercent records the user's standing loyalty discount, fetched
// once from the profile.
func (d *Draft) SetLoyaltyPercent(percent decimal.Decimal) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loyaltyPercent = percent
}

// SetPendingQuantity records an unsaved per-line quantity edit so the
// displayed total reflects it before the sync lands.
func (d *Draft) SetPendingQuantity(productID string, quantity int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pendingEdits[productID] = quantity
}

// ClearPendingEdit drops an unsaved edit, reverting the display to the last
// server-confirmed quantity. Called after a sync lands or is rejected.
func (d *Draft) ClearPendingEdit(productID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pendingEdits, productID)
}

// PendingQuantity returns the unsaved quantity edit for a line, if any.
func (d *Draft) PendingQuantity(productID string) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	q, ok := d.pendingEdits[productID]
	return q, ok
}

// Breakdown recomputes the displayed totals from current inputs.
func (d *Draft) Breakdown() Breakdown {
	d.mu.Lock()
	edits := make(map[string]int, len(d.pendingEdits))
	for k, v := range d.pendingEdits {
		edits[k] = v
	}
	loyalty := d.loyaltyPercent
	insurance := d.insurance
	d.mu.Unlock()

	var promo *domain.PromoDiscount
	if applied, ok := d.Promo.Applied(); ok {
		promo = &applied
	}
	return Price(d.cart.Items(), edits, loyalty, promo, insurance)
}

// Submit sends the order-creation request. Submission is blocked client-side
// unless the delivery address and the cart are both non-empty. On success the
// cart is re-fetched (the server cleared it) and the draft fields reset; on
// failure the draft stays intact so the user can retry without re-entering
// data.
func (d *Draft) Submit(ctx context.Context) (domain.Order, error) {
	d.mu.Lock()
	address := d.deliveryAddress
	insurance := d.insurance
	d.mu.Unlock()

	if address == "" {
		return domain.Order{}, &domain.ValidationError{Field: "deliveryAddress", Message: "delivery address required"}
	}
	if len(d.cart.Items()) == 0 {
		return domain.Order{}, &domain.ValidationError{Field: "cart", Message: "cart is empty"}
	}

	req := domain.OrderRequest{
		TotalClientPrice: d.Breakdown().FinalTotal,
		DeliveryAddress:  address,
		Insurance:        insurance,
	}
	if applied, ok := d.Promo.Applied(); ok {
		req.PromoCode = applied.Code
	}

	order, err := d.api.CreateOrder(ctx, req)
	if err != nil {
		return domain.Order{}, err
	}

	d.reset()
	if err := d.cart.FetchCart(ctx); err != nil {
		// The order went through; a failed refresh only delays the empty
		// cart until the next fetch.
		return order, nil
	}
	return order, nil
}

func (d *Draft) reset() {
	d.mu.Lock()
	d.deliveryAddress = ""
	d.insurance = false
	d.pendingEdits = make(map[string]int)
	d.mu.Unlock()
	d.Promo.Reset()
}

// Dismiss discards the draft, mirroring the checkout modal being closed.
func (d *Draft) Dismiss() {
	d.reset()
}
