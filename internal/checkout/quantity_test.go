package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-client/internal/domain"
)

type updateCall struct {
	productID string
	quantity  int
}

type stubQuantityCart struct {
	mu    sync.Mutex
	calls []updateCall
	err   error
}

func (s *stubQuantityCart) UpdateQuantity(_ context.Context, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, updateCall{productID: productID, quantity: quantity})
	return s.err
}

func (s *stubQuantityCart) snapshot() []updateCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]updateCall, len(s.calls))
	copy(out, s.calls)
	return out
}

func waitForSettled(t *testing.T, draft *Draft, productID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, pending := draft.PendingQuantity(productID); !pending {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for the %s edit to settle", productID)
}

func TestQuantityBurstCollapsesToOneSync(t *testing.T) {
	cart := &stubQuantityCart{}
	draft := newTestDraft(&stubOrderAPI{}, &stubCart{})
	editor := NewQuantityEditor(cart, draft, 30*time.Millisecond, nil)

	for _, q := range []int{2, 3, 4, 5} {
		editor.SetQuantity(context.Background(), "p1", q)
		time.Sleep(5 * time.Millisecond)
	}
	waitForSettled(t, draft, "p1")

	calls := cart.snapshot()
	require.Len(t, calls, 1, "burst must collapse to one cart sync")
	assert.Equal(t, updateCall{productID: "p1", quantity: 5}, calls[0])
}

func TestQuantityEditShowsInBreakdownBeforeSync(t *testing.T) {
	cart := &stubQuantityCart{}
	lines := &stubCart{items: []domain.LineItem{{ProductID: "p1", UnitPrice: dec("10"), Quantity: 1}}}
	draft := newTestDraft(&stubOrderAPI{}, lines)
	editor := NewQuantityEditor(cart, draft, time.Hour, nil)
	defer editor.Stop()

	editor.SetQuantity(context.Background(), "p1", 4)

	b := draft.Breakdown()
	assert.True(t, b.LineTotal.Equal(dec("40")), "pending edit must drive the displayed total, got %s", b.LineTotal)
	assert.Empty(t, cart.snapshot(), "sync must wait out the window")
}

func TestRejectedQuantityEditReverts(t *testing.T) {
	cart := &stubQuantityCart{err: &domain.ServerError{Status: 500, Message: "cart service down"}}
	lines := &stubCart{items: []domain.LineItem{{ProductID: "p1", UnitPrice: dec("10"), Quantity: 2}}}
	draft := newTestDraft(&stubOrderAPI{}, lines)

	var gotErr error
	editor := NewQuantityEditor(cart, draft, 0, func(err error) { gotErr = err })

	editor.SetQuantity(context.Background(), "p1", 9)

	require.Error(t, gotErr)
	_, pending := draft.PendingQuantity("p1")
	assert.False(t, pending, "rejected edit must not linger as an override")
	b := draft.Breakdown()
	assert.True(t, b.LineTotal.Equal(dec("20")), "display must revert to the confirmed quantity, got %s", b.LineTotal)
}

func TestQuantityClampedToMinimumOne(t *testing.T) {
	cart := &stubQuantityCart{}
	draft := newTestDraft(&stubOrderAPI{}, &stubCart{})
	editor := NewQuantityEditor(cart, draft, 0, nil)

	editor.SetQuantity(context.Background(), "p1", 0)

	calls := cart.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, 1, calls[0].quantity)
}

func TestLinesDebounceIndependently(t *testing.T) {
	cart := &stubQuantityCart{}
	draft := newTestDraft(&stubOrderAPI{}, &stubCart{})
	editor := NewQuantityEditor(cart, draft, 20*time.Millisecond, nil)

	editor.SetQuantity(context.Background(), "p1", 2)
	editor.SetQuantity(context.Background(), "p2", 3)
	waitForSettled(t, draft, "p1")
	waitForSettled(t, draft, "p2")

	calls := cart.snapshot()
	assert.Len(t, calls, 2, "editing one line must not cancel another line's sync")
}

func TestStopCancelsScheduledSync(t *testing.T) {
	cart := &stubQuantityCart{}
	draft := newTestDraft(&stubOrderAPI{}, &stubCart{})
	editor := NewQuantityEditor(cart, draft, 20*time.Millisecond, nil)

	editor.SetQuantity(context.Background(), "p1", 7)
	editor.Stop()
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, cart.snapshot(), "stopped editor must not sync")
}
