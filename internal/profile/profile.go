package profile

import (
	"context"
	"sync"

	"storefront-client/internal/api"
	"storefront-client/internal/domain"
	"storefront-client/internal/pagination"
)

type backend interface {
	ListOrders(ctx context.Context, page, size int) (api.OrderPage, error)
	ListShipments(ctx context.Context, page, size int) (api.ShipmentPage, error)
	ListBatchCargos(ctx context.Context, page, size int) (api.CargoPage, error)
	ListReferrals(ctx context.Context, page, size int) (api.ReferralPage, error)
	GetLoyalty(ctx context.Context) (domain.Loyalty, error)
	GetPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error)
	GetProfile(ctx context.Context) (domain.Identity, error)
}

// View is the tabbed account shell. Each tab's cursor is constructed lazily
// on first access and fetches its own paginated data independently; a page
// failure in one tab never touches another tab's state. Order history
// endpoints are 1-based.
type View struct {
	api      backend
	pageSize int

	mu        sync.Mutex
	orders    *pagination.Cursor[domain.Order]
	shipments *pagination.Cursor[domain.Shipment]
	cargos    *pagination.Cursor[domain.BatchCargo]
	referrals *pagination.Cursor[domain.Referral]
	loyalty   *domain.Loyalty
}

// New builds the profile shell with no tabs mounted.
func New(apiClient backend, pageSize int) *View {
	return &View{api: apiClient, pageSize: pageSize}
}

// Orders mounts and returns the order history tab.
func (v *View) Orders() *pagination.Cursor[domain.Order] {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.orders == nil {
		v.orders = pagination.NewCursor(func(ctx context.Context, page int) (pagination.Page[domain.Order], error) {
			resp, err := v.api.ListOrders(ctx, page, v.pageSize)
			if err != nil {
				return pagination.Page[domain.Order]{}, err
			}
			return pagination.Page[domain.Order]{Items: resp.Orders, Last: resp.Last}, nil
		}, 1)
	}
	return v.orders
}

// Shipments mounts and returns the shipments tab.
func (v *View) Shipments() *pagination.Cursor[domain.Shipment] {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.shipments == nil {
		v.shipments = pagination.NewCursor(func(ctx context.Context, page int) (pagination.Page[domain.Shipment], error) {
			resp, err := v.api.ListShipments(ctx, page, v.pageSize)
			if err != nil {
				return pagination.Page[domain.Shipment]{}, err
			}
			return pagination.Page[domain.Shipment]{Items: resp.Content, Last: resp.Last}, nil
		}, 1)
	}
	return v.shipments
}

// BatchCargos mounts and returns the grouped shipments tab.
func (v *View) BatchCargos() *pagination.Cursor[domain.BatchCargo] {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cargos == nil {
		v.cargos = pagination.NewCursor(func(ctx context.Context, page int) (pagination.Page[domain.BatchCargo], error) {
			resp, err := v.api.ListBatchCargos(ctx, page, v.pageSize)
			if err != nil {
				return pagination.Page[domain.BatchCargo]{}, err
			}
			return pagination.Page[domain.BatchCargo]{Items: resp.Content, Last: resp.Last}, nil
		}, 1)
	}
	return v.cargos
}

// Referrals mounts and returns the referral dashboard tab.
func (v *View) Referrals() *pagination.Cursor[domain.Referral] {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.referrals == nil {
		v.referrals = pagination.NewCursor(func(ctx context.Context, page int) (pagination.Page[domain.Referral], error) {
			resp, err := v.api.ListReferrals(ctx, page, v.pageSize)
			if err != nil {
				return pagination.Page[domain.Referral]{}, err
			}
			return pagination.Page[domain.Referral]{Items: resp.Content, Last: resp.Last}, nil
		}, 1)
	}
	return v.referrals
}

// Loyalty fetches the loyalty state once and caches it; the discount percent
// feeds the checkout breakdown.
func (v *View) Loyalty(ctx context.Context) (domain.Loyalty, error) {
	v.mu.Lock()
	cached := v.loyalty
	v.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}

	loyalty, err := v.api.GetLoyalty(ctx)
	if err != nil {
		return domain.Loyalty{}, err
	}
	v.mu.Lock()
	v.loyalty = &loyalty
	v.mu.Unlock()
	return loyalty, nil
}

// PaymentMethods fetches the stored payment instruments.
func (v *View) PaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	return v.api.GetPaymentMethods(ctx)
}

// Identity fetches the personal data tab's fields.
func (v *View) Identity(ctx context.Context) (domain.Identity, error) {
	return v.api.GetProfile(ctx)
}
