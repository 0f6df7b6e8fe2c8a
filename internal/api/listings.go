package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"storefront-client/internal/domain"
)

// ProductQuery carries the catalog listing filters. Zero values are omitted
// from the query string.
type ProductQuery struct {
	Page       int
	Size       int
	SearchTerm string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SortBy     string
}

// ProductPage is one page of catalog results; products are 0-based paged.
type ProductPage struct {
	Content    []domain.Product `json:"content"`
	TotalPages int              `json:"totalPages"`
}

// OrderPage is one page of order history; orders are 1-based paged with a
// terminal "last" flag.
type OrderPage struct {
	Orders []domain.Order `json:"orders"`
	Last   bool           `json:"last"`
}

// ShipmentPage is one page of shipment history.
type ShipmentPage struct {
	Content []domain.Shipment `json:"content"`
	Last    bool              `json:"last"`
}

// CargoPage is one page of batch cargo records.
type CargoPage struct {
	Content []domain.BatchCargo `json:"content"`
	Last    bool                `json:"last"`
}

// ReferralPage is one page of referral records.
type ReferralPage struct {
	Content []domain.Referral `json:"content"`
	Last    bool              `json:"last"`
}

// ListProducts queries the paginated, filtered, sorted catalog.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (ProductPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("size", strconv.Itoa(q.Size))
	if q.SearchTerm != "" {
		query.Set("searchTerm", q.SearchTerm)
	}
	if q.MinPrice != nil {
		query.Set("minPrice", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		query.Set("maxPrice", q.MaxPrice.String())
	}
	if q.SortBy != "" {
		query.Set("sortBy", q.SortBy)
	}

	var out ProductPage
	err := c.do(ctx, http.MethodGet, "/products", query, nil, &out)
	return out, err
}

func pageQuery(page, size int) url.Values {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	return query
}

// ListOrders fetches one page of the user's order history.
func (c *Client) ListOrders(ctx context.Context, page, size int) (OrderPage, error) {
	var out OrderPage
	err := c.do(ctx, http.MethodGet, "/orders", pageQuery(page, size), nil, &out)
	return out, err
}

// ListShipments fetches one page of the user's shipments.
func (c *Client) ListShipments(ctx context.Context, page, size int) (ShipmentPage, error) {
	var out ShipmentPage
	err := c.do(ctx, http.MethodGet, "/shipments", pageQuery(page, size), nil, &out)
	return out, err
}

// ListBatchCargos fetches one page of grouped shipments.
func (c *Client) ListBatchCargos(ctx context.Context, page, size int) (CargoPage, error) {
	var out CargoPage
	err := c.do(ctx, http.MethodGet, "/cargos", pageQuery(page, size), nil, &out)
	return out, err
}

// ListReferrals fetches one page of the referral dashboard.
func (c *Client) ListReferrals(ctx context.Context, page, size int) (ReferralPage, error) {
	var out ReferralPage
	err := c.do(ctx, http.MethodGet, "/referrals", pageQuery(page, size), nil, &out)
	return out, err
}

// GetLoyalty returns the user's standing loyalty state, including the
// discount percentage applied at checkout.
func (c *Client) GetLoyalty(ctx context.Context) (domain.Loyalty, error) {
	var out domain.Loyalty
	err := c.do(ctx, http.MethodGet, "/users/me/loyalty", nil, nil, &out)
	return out, err
}

// GetPaymentMethods returns the user's stored payment instruments.
func (c *Client) GetPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	var out []domain.PaymentMethod
	err := c.do(ctx, http.MethodGet, "/users/me/payment-methods", nil, nil, &out)
	return out, err
}

// GetProfile returns the identity fields for the account tab.
func (c *Client) GetProfile(ctx context.Context) (domain.Identity, error) {
	var out domain.Identity
	err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &out)
	return out, err
}
