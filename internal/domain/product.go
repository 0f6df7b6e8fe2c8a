package domain

import "github.com/shopspring/decimal"

// Product is a catalog entry as the backend returns it.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	InStock     bool            `json:"inStock"`
}

// DraftProduct is a locally drafted product entered from the terminal. It
// lives in client storage under its own key, independent of cart and session.
type DraftProduct struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
}
