package domain

import "github.com/shopspring/decimal"

// DiscountType distinguishes percentage promos from fixed-amount promos.
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

// PromoDiscount is the server-validated discount attached to a promo code.
type PromoDiscount struct {
	Code  string          `json:"code"`
	Type  DiscountType    `json:"discountType"`
	Value decimal.Decimal `json:"discountValue"`
}

// AmountFor returns the discount this promo takes off the given line total.
// Percentage promos scale with the total; fixed promos return the nominal value.
func (p PromoDiscount) AmountFor(lineTotal decimal.Decimal) decimal.Decimal {
	if p.Type == DiscountPercentage {
		return lineTotal.Mul(p.Value).Div(decimal.NewFromInt(100))
	}
	return p.Value
}
