package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"storefront-client/internal/api"
	"storefront-client/internal/domain"
)

type stubLister struct {
	pages     map[int]api.ProductPage
	lastQuery api.ProductQuery
	calls     int
}

func (s *stubLister) ListProducts(_ context.Context, q api.ProductQuery) (api.ProductPage, error) {
	s.calls++
	s.lastQuery = q
	return s.pages[q.Page], nil
}

type stubAdder struct {
	added []domain.Product
}

func (s *stubAdder) AddToCart(_ context.Context, product domain.Product) error {
	s.added = append(s.added, product)
	return nil
}

func twoPages() map[int]api.ProductPage {
	return map[int]api.ProductPage{
		0: {Content: []domain.Product{{ID: "p1"}, {ID: "p2"}}, TotalPages: 2},
		1: {Content: []domain.Product{{ID: "p3"}}, TotalPages: 2},
	}
}

func TestListingAccumulatesPages(t *testing.T) {
	lister := &stubLister{pages: twoPages()}
	view := New(lister, &stubAdder{}, 20)

	if err := view.LoadNext(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := view.LoadNext(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	products := view.Products()
	if len(products) != 3 || products[2].ID != "p3" {
		t.Fatalf("unexpected listing: %+v", products)
	}
	if view.Cursor.HasMore() {
		t.Fatalf("expected listing exhausted")
	}
}

func TestFilterChangeResetsCursor(t *testing.T) {
	lister := &stubLister{pages: twoPages()}
	view := New(lister, &stubAdder{}, 20)
	if err := view.LoadNext(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := view.LoadNext(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	lister.pages = map[int]api.ProductPage{
		0: {Content: []domain.Product{{ID: "lamp-1"}}, TotalPages: 1},
	}
	view.SetFilters(Filters{SearchTerm: "lamp"})

	if err := view.LoadNext(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	products := view.Products()
	if len(products) != 1 || products[0].ID != "lamp-1" {
		t.Fatalf("filter change must restart the listing, got %+v", products)
	}
	if lister.lastQuery.SearchTerm != "lamp" || lister.lastQuery.Page != 0 {
		t.Fatalf("unexpected query: %+v", lister.lastQuery)
	}
}

func TestUnchangedFiltersDoNotReset(t *testing.T) {
	lister := &stubLister{pages: twoPages()}
	min := decimal.NewFromInt(5)
	view := New(lister, &stubAdder{}, 20)
	view.SetFilters(Filters{SearchTerm: "x", MinPrice: &min})
	if err := view.LoadNext(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	same := decimal.NewFromInt(5)
	view.SetFilters(Filters{SearchTerm: "x", MinPrice: &same})

	if len(view.Products()) != 2 {
		t.Fatalf("equal filters must keep accumulated items")
	}
}

func TestAddToCartForwards(t *testing.T) {
	adder := &stubAdder{}
	view := New(&stubLister{pages: twoPages()}, adder, 20)

	if err := view.AddToCart(context.Background(), domain.Product{ID: "p1"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(adder.added) != 1 || adder.added[0].ID != "p1" {
		t.Fatalf("expected forwarded intent, got %+v", adder.added)
	}
}
