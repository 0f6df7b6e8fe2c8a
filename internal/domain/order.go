package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a placed order as returned by the order history endpoints.
type Order struct {
	ID              string          `json:"id"`
	Items           []LineItem      `json:"items"`
	TotalPrice      decimal.Decimal `json:"totalClientPrice"`
	DeliveryAddress string          `json:"deliveryAddress"`
	PromoCode       string          `json:"promoCode,omitempty"`
	Insurance       bool            `json:"insurance"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// OrderRequest is the payload for order creation.
type OrderRequest struct {
	TotalClientPrice decimal.Decimal `json:"totalClientPrice"`
	DeliveryAddress  string          `json:"deliveryAddress"`
	PromoCode        string          `json:"promoCode,omitempty"`
	Insurance        bool            `json:"insurance,omitempty"`
}

// Shipment tracks a single order's delivery progress.
type Shipment struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	Status    string    `json:"status"`
	Carrier   string    `json:"carrier,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BatchCargoStatus is the lifecycle of a grouped shipment.
type BatchCargoStatus string

const (
	BatchUnfinished BatchCargoStatus = "UNFINISHED"
	BatchFinished   BatchCargoStatus = "FINISHED"
	BatchArrived    BatchCargoStatus = "ARRIVED"
	BatchCompleted  BatchCargoStatus = "COMPLETED"
)

// BatchCargo bundles multiple orders into one tracked shipment.
type BatchCargo struct {
	ID       string           `json:"id"`
	OrderIDs []string         `json:"orderIds"`
	Status   BatchCargoStatus `json:"status"`
}

// Next returns the following lifecycle status, or the current one if terminal.
func (s BatchCargoStatus) Next() BatchCargoStatus {
	switch s {
	case BatchUnfinished:
		return BatchFinished
	case BatchFinished:
		return BatchArrived
	case BatchArrived:
		return BatchCompleted
	default:
		return s
	}
}

// PaymentMethod is a stored payment instrument shown on the profile.
type PaymentMethod struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Last4   string `json:"last4,omitempty"`
	Default bool   `json:"default"`
}

// Loyalty is the user's standing loyalty state. DiscountPercent feeds the
// checkout pricing independently of promo codes.
type Loyalty struct {
	Points          int             `json:"points"`
	Tier            string          `json:"tier"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

// Referral is one referred signup on the referral dashboard.
type Referral struct {
	Email     string    `json:"email"`
	Rewarded  bool      `json:"rewarded"`
	CreatedAt time.Time `json:"createdAt"`
}
