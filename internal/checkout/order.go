package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fjod/go_storefront/internal/domain"
)

// Order is the immutable summary produced when a checkout run confirms.
type Order struct {
	ID             uuid.UUID         `json:"id"`
	Lines          []domain.CartLine `json:"lines"`
	TotalItems     int               `json:"total_items"`
	Subtotal       decimal.Decimal   `json:"subtotal"`
	ShippingFee    decimal.Decimal   `json:"shipping_fee"`
	Total          decimal.Decimal   `json:"total"`
	ShippingMethod string            `json:"shipping_method"`
	PaymentMethod  string            `json:"payment_method"`
	Address        Address           `json:"address"`
	PlacedAt       time.Time         `json:"placed_at"`
}
