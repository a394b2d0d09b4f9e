package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrCouponExists is returned when creating a coupon whose code is already
	// taken within the catalogue
	ErrCouponExists = errors.New("coupon already exists")

	// ErrCouponNotFound is returned when a coupon code cannot be resolved
	// within the catalogue
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrCouponInactive is returned when a coupon has been switched off
	ErrCouponInactive = errors.New("coupon is inactive")

	// ErrCouponExpired is returned when a coupon is past its valid-until instant
	ErrCouponExpired = errors.New("coupon has expired")

	// ErrCouponUsageExceeded is returned when a coupon has exhausted its
	// redemption cap
	ErrCouponUsageExceeded = errors.New("coupon usage limit reached")

	// ErrProductNotFound is returned when a product id cannot be resolved
	// within the catalogue
	ErrProductNotFound = errors.New("product not found")

	// ErrCartNotFound is returned when an operation requires an existing cart
	// and none exists for the (catalogue, owner) pair
	ErrCartNotFound = errors.New("cart not found")

	// ErrItemNotFound is returned when an update or removal targets a product
	// that is not a line in the cart
	ErrItemNotFound = errors.New("item not in cart")

	// ErrCartEmpty is returned when an operation needs at least one line item
	ErrCartEmpty = errors.New("cart is empty")

	// ErrConflict is the retryable signal for a concurrent cart-creation race
	ErrConflict = errors.New("concurrent cart modification")

	// ErrMissingIdentity is returned when neither a user id nor a session id
	// accompanies the request
	ErrMissingIdentity = errors.New("missing identity")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")
)

// MinCartNotMetError rejects a coupon whose minimum cart value exceeds the
// current subtotal. Required lets the caller tell the user how much is
// missing.
type MinCartNotMetError struct {
	Required decimal.Decimal
}

func (e *MinCartNotMetError) Error() string {
	return fmt.Sprintf("minimum cart value %s not met", e.Required)
}

// OutOfStockError rejects a quantity that exceeds the product's available
// stock. Available lets the caller clamp the UI.
type OutOfStockError struct {
	ProductID string
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: %d available", e.ProductID, e.Available)
}
