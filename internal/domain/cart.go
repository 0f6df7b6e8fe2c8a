package domain

import "github.com/shopspring/decimal"

// LineItem is one product entry in the cart. The displayed cart is always a
// materialization of the last successful server response.
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"productName"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// LineTotal returns unit price times quantity for a single line.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartTotal sums line totals over all lines.
func CartTotal(lines []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}
