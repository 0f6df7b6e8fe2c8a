package checkout

import (
	"github.com/shopspring/decimal"

	"storefront-client/internal/domain"
)

// insuranceRate is the surcharge applied to the line total when shipping
// insurance is selected.
var insuranceRate = decimal.NewFromFloat(0.05)

// Breakdown is the displayed checkout price decomposition. All fields are
// recomputed from inputs on every change; nothing here has side effects.
type Breakdown struct {
	LineTotal     decimal.Decimal
	UserDiscount  decimal.Decimal
	PromoDiscount decimal.Decimal
	TotalDiscount decimal.Decimal
	Insurance     decimal.Decimal
	FinalTotal    decimal.Decimal
}

// Price computes the breakdown for the given cart. pendingEdits maps product
// ids to locally edited quantities that have not been synced yet; they
// override the last-synced quantity in the displayed total. The discount
// lines are additive and unclamped; the clamp to zero happens once, at the
// final total.
func Price(lines []domain.LineItem, pendingEdits map[string]int, userDiscountPercent decimal.Decimal, promo *domain.PromoDiscount, insurance bool) Breakdown {
	lineTotal := decimal.Zero
	for _, l := range lines {
		qty := l.Quantity
		if edited, ok := pendingEdits[l.ProductID]; ok {
			qty = edited
		}
		if qty < 1 {
			qty = 1
		}
		lineTotal = lineTotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(qty))))
	}

	hundred := decimal.NewFromInt(100)
	userDiscount := lineTotal.Mul(userDiscountPercent).Div(hundred)

	promoDiscount := decimal.Zero
	if promo != nil {
		promoDiscount = promo.AmountFor(lineTotal)
	}

	totalDiscount := userDiscount.Add(promoDiscount)

	insuranceCost := decimal.Zero
	if insurance {
		insuranceCost = lineTotal.Mul(insuranceRate)
	}

	final := lineTotal.Sub(totalDiscount).Add(insuranceCost)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return Breakdown{
		LineTotal:     lineTotal,
		UserDiscount:  userDiscount,
		PromoDiscount: promoDiscount,
		TotalDiscount: totalDiscount,
		Insurance:     insuranceCost,
		FinalTotal:    final,
	}
}
