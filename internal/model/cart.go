package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one product line in a cart. UnitPrice is snapshotted from the
// product's effective price at the time the line was added.
type CartItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// AppliedCoupon records the coupon currently attached to a cart together
// with the discount rule it resolved to at apply time.
type AppliedCoupon struct {
	Code string       `json:"code"`
	Rule DiscountRule `json:"rule"`
}

// Cart is the persisted cart for one (catalogue, owner) pair. Items are
// ordered and unique by product id. Subtotal, Discount and Total are derived
// and recomputed on every mutation, never set by a client.
type Cart struct {
	ID            uuid.UUID       `json:"id"`
	CatalogueID   string          `json:"catalogue_id"`
	OwnerKey      string          `json:"-"` // Identity detail, not exposed in API
	Items         []CartItem      `json:"items"`
	AppliedCoupon *AppliedCoupon  `json:"applied_coupon,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewCart creates an empty cart for the given catalogue and owner.
func NewCart(catalogueID, ownerKey string) *Cart {
	return &Cart{
		ID:          uuid.New(),
		CatalogueID: catalogueID,
		OwnerKey:    ownerKey,
		Items:       []CartItem{},
		Subtotal:    decimal.Zero,
		Discount:    decimal.Zero,
		Total:       decimal.Zero,
	}
}

// Item returns a pointer to the line for productID, or nil when absent.
func (c *Cart) Item(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// RemoveItem drops the line for productID. Returns false when no such line
// exists.
func (c *Cart) RemoveItem(productID string) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// IsEmpty reports whether the cart holds no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// CartResult is the outcome of a cart mutation. CouponRemoved reports that a
// previously applied coupon was detached because it no longer qualified
// after the mutation (for example the subtotal dropped below the coupon's
// minimum cart value).
type CartResult struct {
	Cart          *Cart `json:"cart"`
	CouponRemoved bool  `json:"coupon_removed,omitempty"`
}

// AddItemRequest is the DTO for adding a product to a cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,notblank,max=255"`
	Quantity  *int   `json:"quantity" validate:"required,gte=1"`
}

// UpdateItemRequest is the DTO for setting a line's quantity directly.
// A quantity of zero or below removes the line.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}
