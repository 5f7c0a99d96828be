package domain

import "github.com/shopspring/decimal"

// Product is a catalog item as returned by the remote catalog service.
// The client never mutates products; cart lines hold a snapshot taken
// at add-time.
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Images      []string        `json:"images"`
	Category    Category        `json:"category"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
