package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the immutable snapshot taken from a cart at checkout. Payment
// collection happens downstream against Total; the order itself only records
// what was priced.
type Order struct {
	ID          uuid.UUID       `json:"id"`
	CatalogueID string          `json:"catalogue_id"`
	OwnerKey    string          `json:"-"`
	Items       []CartItem      `json:"items"`
	CouponCode  *string         `json:"coupon_code,omitempty"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	CreatedAt   time.Time       `json:"created_at"`
}
