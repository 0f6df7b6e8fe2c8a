package drafts

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-client/internal/domain"
	"storefront-client/internal/storage"
)

// Store keeps terminal-entered draft products under their own storage key.
// Drafts survive logout and cart clears; their lifecycle is independent of
// both.
type Store struct {
	storage *storage.Store
	mu      sync.Mutex
}

// New builds the draft store over the shared client storage.
func New(st *storage.Store) *Store {
	return &Store{storage: st}
}

// List returns the persisted drafts.
func (s *Store) List() ([]domain.DraftProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

func (s *Store) listLocked() ([]domain.DraftProduct, error) {
	raw, ok := s.storage.Get(storage.KeyDraftProducts)
	if !ok || raw == "" {
		return nil, nil
	}
	var drafts []domain.DraftProduct
	if err := json.Unmarshal([]byte(raw), &drafts); err != nil {
		return nil, fmt.Errorf("decode drafts: %w", err)
	}
	return drafts, nil
}

// Add validates and persists a new draft, returning it with its assigned id.
func (s *Store) Add(name string, price decimal.Decimal, description string) (domain.DraftProduct, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.DraftProduct{}, &domain.ValidationError{Field: "name", Message: "draft name required"}
	}
	if price.IsNegative() {
		return domain.DraftProduct{}, &domain.ValidationError{Field: "price", Message: "price must not be negative"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	drafts, err := s.listLocked()
	if err != nil {
		return domain.DraftProduct{}, err
	}
	draft := domain.DraftProduct{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Price:       price,
	}
	drafts = append(drafts, draft)
	if err := s.saveLocked(drafts); err != nil {
		return domain.DraftProduct{}, err
	}
	return draft, nil
}

// Remove deletes a draft by id. Unknown ids yield ErrNotFound.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drafts, err := s.listLocked()
	if err != nil {
		return err
	}
	kept := drafts[:0]
	for _, d := range drafts {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(drafts) {
		return domain.ErrNotFound
	}
	return s.saveLocked(kept)
}

func (s *Store) saveLocked(drafts []domain.DraftProduct) error {
	data, err := json.Marshal(drafts)
	if err != nil {
		return fmt.Errorf("encode drafts: %w", err)
	}
	return s.storage.Set(storage.KeyDraftProducts, string(data))
}
