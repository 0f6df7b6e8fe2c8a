package catalog

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"storefront-client/internal/api"
	"storefront-client/internal/domain"
	"storefront-client/internal/pagination"
)

type productLister interface {
	ListProducts(ctx context.Context, q api.ProductQuery) (api.ProductPage, error)
}

type cartAdder interface {
	AddToCart(ctx context.Context, product domain.Product) error
}

// Filters are the catalog's listing parameters. Changing any of them resets
// the pagination cursor to the first page.
type Filters struct {
	SearchTerm string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SortBy     string
}

// View is the catalog browsing view-model: a filtered, sorted, infinitely
// scrolled product listing that forwards add-to-cart intents to the cart
// store.
type View struct {
	api      productLister
	cart     cartAdder
	pageSize int

	mu      sync.Mutex
	filters Filters

	Cursor *pagination.Cursor[domain.Product]
}

// New builds the catalog view. Product pages are 0-based.
func New(apiClient productLister, cart cartAdder, pageSize int) *View {
	v := &View{
		api:      apiClient,
		cart:     cart,
		pageSize: pageSize,
	}
	v.Cursor = pagination.NewCursor(v.fetch, 0)
	return v
}

func (v *View) fetch(ctx context.Context, page int) (pagination.Page[domain.Product], error) {
	v.mu.Lock()
	f := v.filters
	v.mu.Unlock()

	resp, err := v.api.ListProducts(ctx, api.ProductQuery{
		Page:       page,
		Size:       v.pageSize,
		SearchTerm: f.SearchTerm,
		MinPrice:   f.MinPrice,
		MaxPrice:   f.MaxPrice,
		SortBy:     f.SortBy,
	})
	if err != nil {
		return pagination.Page[domain.Product]{}, err
	}
	return pagination.Page[domain.Product]{
		Items: resp.Content,
		Last:  page+1 >= resp.TotalPages,
	}, nil
}

// SetFilters applies new listing parameters and restarts pagination.
func (v *View) SetFilters(f Filters) {
	v.mu.Lock()
	changed := !filtersEqual(v.filters, f)
	v.filters = f
	v.mu.Unlock()
	if changed {
		v.Cursor.Reset()
	}
}

func filtersEqual(a, b Filters) bool {
	if a.SearchTerm != b.SearchTerm || a.SortBy != b.SortBy {
		return false
	}
	return decimalPtrEqual(a.MinPrice, b.MinPrice) && decimalPtrEqual(a.MaxPrice, b.MaxPrice)
}

func decimalPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// Products returns the accumulated listing.
func (v *View) Products() []domain.Product {
	return v.Cursor.Items()
}

// LoadNext advances the listing by one page.
func (v *View) LoadNext(ctx context.Context) error {
	return v.Cursor.LoadNext(ctx)
}

// AddToCart forwards the intent to the cart store.
func (v *View) AddToCart(ctx context.Context, product domain.Product) error {
	return v.cart.AddToCart(ctx, product)
}
