package checkout

import (
	"context"
	"sync"
	"time"

	"storefront-client/internal/debounce"
)

type quantityCart interface {
	UpdateQuantity(ctx context.Context, productID string, quantity int) error
}

// QuantityEditor coalesces rapid quantity edits on a checkout line. Each
// keystroke lands in the draft's pending overrides immediately, so the
// displayed total updates at once; the cart sync fires once per burst, after
// the window elapses. A rejected sync drops the pending edit, reverting the
// display to the last server-confirmed quantity. Lines debounce
// independently: editing one line never cancels another's scheduled sync.
type QuantityEditor struct {
	cart    quantityCart
	draft   *Draft
	window  time.Duration
	onError func(error)

	mu         sync.Mutex
	debouncers map[string]*debounce.Debouncer
}

// NewQuantityEditor builds the editor over the given cart and draft.
// onError surfaces rejected syncs to the view; it may be nil.
func NewQuantityEditor(cart quantityCart, draft *Draft, window time.Duration, onError func(error)) *QuantityEditor {
	return &QuantityEditor{
		cart:       cart,
		draft:      draft,
		window:     window,
		onError:    onError,
		debouncers: make(map[string]*debounce.Debouncer),
	}
}

// SetQuantity records a quantity edit and schedules the debounced sync.
// Quantities below 1 are clamped to 1.
func (e *QuantityEditor) SetQuantity(ctx context.Context, productID string, quantity int) {
	if productID == "" {
		return
	}
	if quantity < 1 {
		quantity = 1
	}

	e.draft.SetPendingQuantity(productID, quantity)
	e.debouncerFor(productID).Trigger(func() {
		err := e.cart.UpdateQuantity(ctx, productID, quantity)
		// The cart store now holds the outcome either way: the confirmed
		// new quantity, or the untouched old one. The override is obsolete.
		e.draft.ClearPendingEdit(productID)
		if err != nil && e.onError != nil {
			e.onError(err)
		}
	})
}

func (e *QuantityEditor) debouncerFor(productID string) *debounce.Debouncer {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.debouncers[productID]
	if !ok {
		d = debounce.New(e.window)
		e.debouncers[productID] = d
	}
	return d
}

// Stop cancels all scheduled syncs, as when the checkout view closes.
func (e *QuantityEditor) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, d := range e.debouncers {
		d.Stop()
	}
}
