package pagination

import (
	"context"
	"sync"
	"time"

	"storefront-client/internal/debounce"
)

// Visibility abstracts viewport-intersection detection over the tail row of
// a rendered list, so the mechanism is swappable: a browser target would use
// an intersection observer, the terminal target uses ManualVisibility.
type Visibility interface {
	// Observe switches the watched tail row, detaching from the previous
	// one. Stale watchers must not accumulate.
	Observe(tailID string)
	// OnIntersect registers the callback fired when the watched row enters
	// view.
	OnIntersect(fn func())
	Close()
}

// ManualVisibility implements Visibility for non-browser targets: the
// intersection event is an explicit "load more" action.
type ManualVisibility struct {
	mu     sync.Mutex
	tailID string
	fn     func()
	closed bool
}

// NewManualVisibility builds an idle manual trigger.
func NewManualVisibility() *ManualVisibility {
	return &ManualVisibility{}
}

// Observe records the watched tail row.
func (m *ManualVisibility) Observe(tailID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tailID = tailID
}

// OnIntersect registers the intersection callback.
func (m *ManualVisibility) OnIntersect(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
}

// Trigger simulates the watched row entering view.
func (m *ManualVisibility) Trigger() {
	m.mu.Lock()
	fn := m.fn
	closed := m.closed
	m.mu.Unlock()
	if fn != nil && !closed {
		fn()
	}
}

// Close detaches the callback.
func (m *ManualVisibility) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.fn = nil
}

type loader interface {
	LoadNext(ctx context.Context) error
	HasMore() bool
	Loading() bool
}

// Scroller wires a Visibility source to a cursor: when the tail row enters
// view and more pages exist and no fetch is in flight, it schedules a
// debounced next-page load. Its context is cancelled on Close so a page
// response for an unmounted view is abandoned rather than applied.
type Scroller struct {
	vis      Visibility
	cursor   loader
	debounce *debounce.Debouncer
	onError  func(error)

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScroller attaches to vis and starts reacting to intersections. onError
// surfaces failed page loads to the view; it may be nil.
func NewScroller(vis Visibility, cursor loader, window time.Duration, onError func(error)) *Scroller {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scroller{
		vis:      vis,
		cursor:   cursor,
		debounce: debounce.New(window),
		onError:  onError,
		ctx:      ctx,
		cancel:   cancel,
	}
	vis.OnIntersect(s.intersected)
	return s
}

func (s *Scroller) intersected() {
	if !s.cursor.HasMore() || s.cursor.Loading() {
		return
	}
	s.debounce.Trigger(func() {
		if s.ctx.Err() != nil {
			return
		}
		if err := s.cursor.LoadNext(s.ctx); err != nil && s.onError != nil {
			s.onError(err)
		}
	})
}

// TailChanged re-points the watcher at the new final row after a page load.
func (s *Scroller) TailChanged(tailID string) {
	s.vis.Observe(tailID)
}

// Close stops future loads and abandons any in-flight one.
func (s *Scroller) Close() {
	s.cancel()
	s.debounce.Stop()
	s.vis.Close()
}
