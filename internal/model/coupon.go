package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage deducts a percentage of the cart subtotal,
	// optionally capped by MaxDiscount.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFlat deducts a fixed amount, clamped at the subtotal.
	DiscountFlat DiscountType = "flat"
)

// Coupon represents a discount coupon scoped to a catalogue.
// Codes are stored uppercase; comparison is case-insensitive.
type Coupon struct {
	CatalogueID   string           `json:"catalogue_id"`
	Code          string           `json:"code"`
	DiscountType  DiscountType     `json:"discount_type"`
	DiscountValue decimal.Decimal  `json:"discount_value"`
	MaxDiscount   *decimal.Decimal `json:"max_discount,omitempty"` // percentage only
	MinCartValue  decimal.Decimal  `json:"min_cart_value"`
	ValidUntil    *time.Time       `json:"valid_until,omitempty"` // nil = never expires
	MaxUsage      *int             `json:"max_usage,omitempty"`   // nil = unlimited
	UsageCount    int              `json:"usage_count"`
	IsActive      bool             `json:"is_active"`
	CreatedAt     time.Time        `json:"-"` // Not exposed in API
}

// DiscountRule is the snapshot produced by successful coupon validation.
// It is stored on the cart independent of the live Coupon record, so later
// coupon edits do not retroactively change an applied discount.
type DiscountRule struct {
	Type        DiscountType     `json:"type"`
	Value       decimal.Decimal  `json:"value"`
	MaxDiscount *decimal.Decimal `json:"max_discount,omitempty"`
}

// NormalizeCode canonicalizes a coupon code for storage and lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateCouponRequest is the DTO for creating a coupon.
type CreateCouponRequest struct {
	Code          string           `json:"code" validate:"required,notblank,max=64,couponcode"`
	DiscountType  string           `json:"discount_type" validate:"required,oneof=percentage flat"`
	DiscountValue decimal.Decimal  `json:"discount_value"`
	MaxDiscount   *decimal.Decimal `json:"max_discount"`
	MinCartValue  decimal.Decimal  `json:"min_cart_value"`
	ValidUntil    *time.Time       `json:"valid_until"`
	MaxUsage      *int             `json:"max_usage" validate:"omitempty,gte=1"`
	IsActive      *bool            `json:"is_active"`
}

// CouponResponse is the API response DTO for a coupon.
type CouponResponse struct {
	Code          string           `json:"code"`
	DiscountType  DiscountType     `json:"discount_type"`
	DiscountValue decimal.Decimal  `json:"discount_value"`
	MaxDiscount   *decimal.Decimal `json:"max_discount,omitempty"`
	MinCartValue  decimal.Decimal  `json:"min_cart_value"`
	ValidUntil    *time.Time       `json:"valid_until,omitempty"`
	MaxUsage      *int             `json:"max_usage,omitempty"`
	UsageCount    int              `json:"usage_count"`
	IsActive      bool             `json:"is_active"`
}

// ApplyCouponRequest is the DTO for applying a coupon to a cart.
type ApplyCouponRequest struct {
	Code string `json:"code" validate:"required,notblank,max=64"`
}
