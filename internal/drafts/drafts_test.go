package drafts

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storefront-client/internal/domain"
	"storefront-client/internal/storage"
)

func testStore(t *testing.T) (*Store, *storage.Store) {
	t.Helper()
	st, err := storage.Open(t.TempDir(), "storage.json", time.Second)
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	return New(st), st
}

func TestAddAssignsIDAndPersists(t *testing.T) {
	store, _ := testStore(t)

	draft, err := store.Add("Hand-built lamp", decimal.NewFromInt(25), "warm light")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if draft.ID == "" {
		t.Fatalf("expected assigned id")
	}

	drafts, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(drafts) != 1 || drafts[0].Name != "Hand-built lamp" {
		t.Fatalf("unexpected drafts: %+v", drafts)
	}
}

func TestAddValidation(t *testing.T) {
	store, _ := testStore(t)

	_, err := store.Add("   ", decimal.NewFromInt(1), "")
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for empty name, got %v", err)
	}

	_, err = store.Add("x", decimal.NewFromInt(-1), "")
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for negative price, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	store, _ := testStore(t)
	draft, err := store.Add("one", decimal.NewFromInt(1), "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := store.Remove(draft.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.Remove(draft.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDraftsIndependentOfSessionKeys(t *testing.T) {
	store, st := testStore(t)
	if _, err := store.Add("keep me", decimal.NewFromInt(3), ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	// A session cleanup (logout/expiry) clears only session keys.
	if err := st.Delete(storage.SessionKeys...); err != nil {
		t.Fatalf("delete session keys: %v", err)
	}

	drafts, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("drafts must survive session cleanup, got %+v", drafts)
	}
}
