package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"storefront-client/internal/api"
	"storefront-client/internal/domain"
)

// SyncError indicates a cart synchronization was attempted without a
// credential present.
type SyncError struct {
	Reason string
}

func (e *SyncError) Error() string {
	return "cart sync failed: " + e.Reason
}

type backend interface {
	GetCart(ctx context.Context) ([]domain.LineItem, error)
	ReplaceCart(ctx context.Context, entries []api.CartEntry) ([]domain.LineItem, error)
	RemoveCartItem(ctx context.Context, productID string) ([]domain.LineItem, error)
	ClearCart(ctx context.Context) error
}

type credentials interface {
	Credential() (string, bool)
}

// Store owns the shopping cart. Local state is always the materialization of
// the last successful server response; client optimism never survives a sync
// round trip. Mutations are serialized so a sync always completes before the
// next mutation starts.
type Store struct {
	api            backend
	creds          credentials
	onUnauthorized func()
	logger         zerolog.Logger

	mu    sync.Mutex
	items []domain.LineItem
}

// New builds the cart store. onUnauthorized is the cross-cutting cleanup
// invoked whenever the backend rejects the credential: it must clear the
// stored credential and route the user to the login view.
func New(api backend, creds credentials, onUnauthorized func(), logger zerolog.Logger) *Store {
	if onUnauthorized == nil {
		onUnauthorized = func() {}
	}
	return &Store{
		api:            api,
		creds:          creds,
		onUnauthorized: onUnauthorized,
		logger:         logger.With().Str("component", "cart").Logger(),
	}
}

// Items returns a copy of the current line items.
func (s *Store) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// FetchCart hydrates the cart from the server. Anonymous users have no
// server-side cart, so a missing credential just yields an empty cart.
func (s *Store) FetchCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.creds.Credential(); !ok {
		s.items = nil
		return nil
	}
	items, err := s.api.GetCart(ctx)
	if err != nil {
		return s.handle(err)
	}
	s.items = items
	return nil
}

// AddToCart increments the product's quantity if it is already a line item,
// otherwise appends it with quantity 1, then synchronizes the entire cart.
func (s *Store) AddToCart(ctx context.Context, product domain.Product) error {
	if product.ID == "" {
		return &domain.ValidationError{Field: "productId", Message: "missing product id"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	proposed := make([]domain.LineItem, len(s.items))
	copy(proposed, s.items)
	found := false
	for i := range proposed {
		if proposed[i].ProductID == product.ID {
			proposed[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		proposed = append(proposed, domain.LineItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  1,
		})
	}
	return s.syncLocked(ctx, proposed)
}

// RemoveFromCart deletes one product server-side and replaces local state
// with the response.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) error {
	if productID == "" {
		return &domain.ValidationError{Field: "productId", Message: "missing product id"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.api.RemoveCartItem(ctx, productID)
	if err != nil {
		return s.handle(err)
	}
	s.items = items
	return nil
}

// UpdateQuantity sets a line's quantity, clamped to a minimum of 1, and
// synchronizes the full cart.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	proposed := make([]domain.LineItem, len(s.items))
	copy(proposed, s.items)
	for i := range proposed {
		if proposed[i].ProductID == productID {
			proposed[i].Quantity = quantity
		}
	}
	return s.syncLocked(ctx, proposed)
}

// ClearCart empties the cart server-side and locally.
func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.api.ClearCart(ctx); err != nil {
		return s.handle(err)
	}
	s.items = nil
	return nil
}

// syncLocked PUTs the full proposed line set and replaces local state with
// the server's authoritative response. Caller holds the mutex.
func (s *Store) syncLocked(ctx context.Context, proposed []domain.LineItem) error {
	if _, ok := s.creds.Credential(); !ok {
		return &SyncError{Reason: "no credential present"}
	}

	entries := make([]api.CartEntry, 0, len(proposed))
	for _, item := range proposed {
		if item.ProductID == "" || item.Quantity <= 0 {
			continue
		}
		entries = append(entries, api.CartEntry{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	items, err := s.api.ReplaceCart(ctx, entries)
	if err != nil {
		return s.handle(err)
	}
	s.items = items
	return nil
}

// handle applies the uniform authorization-denied policy before returning
// the error to the caller.
func (s *Store) handle(err error) error {
	if errors.Is(err, domain.ErrUnauthorized) {
		s.logger.Warn().Msg("cart operation rejected as unauthorized, forcing logout")
		s.onUnauthorized()
	}
	return err
}
