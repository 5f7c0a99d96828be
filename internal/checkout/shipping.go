package checkout

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrUnknownShippingMethod = errors.New("unknown shipping method")

// ShippingMethod is a flat-fee delivery option. No rate computation happens
// here; the fee is fixed per method.
type ShippingMethod struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Detail string          `json:"detail"`
	Fee    decimal.Decimal `json:"fee"`
}

// ShippingMethods returns the selectable delivery options.
func ShippingMethods() []ShippingMethod {
	return []ShippingMethod{
		{
			ID:     "free",
			Title:  "Free",
			Detail: "Delivery from 3 to 7 business days",
			Fee:    decimal.Zero,
		},
		{
			ID:     "standard",
			Title:  "Standard",
			Detail: "Delivery from 4 to 6 business days",
			Fee:    decimal.RequireFromString("9.90"),
		},
		{
			ID:     "fast",
			Title:  "Fast",
			Detail: "Delivery from 2 to 3 business days",
			Fee:    decimal.RequireFromString("9.90"),
		},
	}
}

func shippingMethodByID(id string) (ShippingMethod, error) {
	for _, m := range ShippingMethods() {
		if m.ID == id {
			return m, nil
		}
	}
	return ShippingMethod{}, ErrUnknownShippingMethod
}
