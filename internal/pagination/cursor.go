package pagination

import (
	"context"
	"sync"
)

// Page is one fetched page of a list. Last marks the page the server reports
// as final.
type Page[T any] struct {
	Items []T
	Last  bool
}

// Fetch loads the page with the given number. The endpoint's numbering
// convention (0- or 1-based) is the caller's concern via the cursor's first
// page.
type Fetch[T any] func(ctx context.Context, page int) (Page[T], error)

// Cursor accumulates paginated results: the first page replaces the list
// (covering reset-on-filter-change), later pages append, and items only grow
// until Reset. At most one load is in flight; a failed load advances nothing
// so a retry resumes from the same page.
type Cursor[T any] struct {
	fetch     Fetch[T]
	firstPage int

	mu      sync.Mutex
	page    int
	items   []T
	hasMore bool
	loading bool
}

// NewCursor builds a cursor whose first request uses firstPage.
func NewCursor[T any](fetch Fetch[T], firstPage int) *Cursor[T] {
	return &Cursor[T]{
		fetch:     fetch,
		firstPage: firstPage,
		page:      firstPage,
		hasMore:   true,
	}
}

// Items returns a copy of the accumulated item sequence.
func (c *Cursor[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// HasMore reports whether the server may have further pages.
func (c *Cursor[T]) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

// Loading reports whether a load is in flight.
func (c *Cursor[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// LoadNext requests the next page and applies it. Calls while a load is in
// flight or after the last page are no-ops.
func (c *Cursor[T]) LoadNext(ctx context.Context) error {
	c.mu.Lock()
	if c.loading || !c.hasMore {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	page := c.page
	c.mu.Unlock()

	result, err := c.fetch(ctx, page)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		// Counter and accumulated items stay put so a retry resumes here.
		return err
	}

	if page == c.firstPage {
		c.items = result.Items
	} else {
		c.items = append(c.items, result.Items...)
	}
	c.page = page + 1
	c.hasMore = !result.Last
	return nil
}

// Reset restarts the cursor at the first page with an empty sequence, as on
// an upstream filter or sort change.
func (c *Cursor[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = c.firstPage
	c.items = nil
	c.hasMore = true
}
