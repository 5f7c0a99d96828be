package domain

import "github.com/shopspring/decimal"

// CartLine is one distinct product held in the cart. Quantity is strictly
// positive while the line exists; a line that would reach quantity <= 0 is
// removed, never stored.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Cart is a snapshot of the ledger: lines in insertion order plus the two
// derived aggregates. TotalItems == 0, len(Lines) == 0 and a zero TotalAmount
// always hold together.
type Cart struct {
	Lines       []CartLine      `json:"lines"`
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}
