package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/catalogue-cart-service/internal/model"
	"github.com/fairyhunter13/catalogue-cart-service/pkg/database"
)

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	Insert(ctx context.Context, coupon *model.Coupon) error
	GetByCode(ctx context.Context, catalogueID, code string) (*model.Coupon, error)
	GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, catalogueID, code string) (*model.Coupon, error)
	IncrementUsage(ctx context.Context, tx database.TxQuerier, catalogueID, code string) error
}

// CouponValidator decides whether a coupon applies to a cart at its current
// subtotal and, when it does, resolves the discount rule snapshot.
type CouponValidator struct {
	coupons CouponRepositoryInterface
	now     func() time.Time
}

// NewCouponValidator creates a CouponValidator backed by the given coupon
// repository.
func NewCouponValidator(coupons CouponRepositoryInterface) *CouponValidator {
	return &CouponValidator{
		coupons: coupons,
		now:     time.Now,
	}
}

// NewCouponValidatorAt creates a CouponValidator with a custom clock.
// Primarily used for testing expiry behavior.
func NewCouponValidatorAt(coupons CouponRepositoryInterface, now func() time.Time) *CouponValidator {
	return &CouponValidator{
		coupons: coupons,
		now:     now,
	}
}

// Validate resolves code within the catalogue and checks it against the
// given cart subtotal.
// Returns:
//   - ErrCouponNotFound if no coupon matches the normalized code
//   - ErrCouponInactive if the coupon is switched off
//   - ErrCouponExpired if the coupon is past its valid-until instant
//   - ErrCouponUsageExceeded if the redemption cap is exhausted
//   - MinCartNotMetError if the subtotal is below the coupon's minimum
func (v *CouponValidator) Validate(ctx context.Context, catalogueID, code string, subtotal decimal.Decimal) (*model.DiscountRule, error) {
	coupon, err := v.coupons.GetByCode(ctx, catalogueID, model.NormalizeCode(code))
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return v.Check(coupon, subtotal)
}

// Check applies the validity chain to an already-loaded coupon. Used by
// checkout, which holds a row lock on the coupon and must not re-read it.
func (v *CouponValidator) Check(coupon *model.Coupon, subtotal decimal.Decimal) (*model.DiscountRule, error) {
	if !coupon.IsActive {
		return nil, ErrCouponInactive
	}
	if coupon.ValidUntil != nil && v.now().After(*coupon.ValidUntil) {
		return nil, ErrCouponExpired
	}
	if coupon.MaxUsage != nil && coupon.UsageCount >= *coupon.MaxUsage {
		return nil, ErrCouponUsageExceeded
	}
	if subtotal.LessThan(coupon.MinCartValue) {
		return nil, &MinCartNotMetError{Required: coupon.MinCartValue}
	}

	return &model.DiscountRule{
		Type:        coupon.DiscountType,
		Value:       coupon.DiscountValue,
		MaxDiscount: coupon.MaxDiscount,
	}, nil
}

// IsCouponRejection reports whether err is one of the coupon validity
// failures, as opposed to an infrastructure error. Rejections cause a silent
// detach during re-validation; infrastructure errors abort the mutation.
func IsCouponRejection(err error) bool {
	var minErr *MinCartNotMetError
	if errors.As(err, &minErr) {
		return true
	}
	return errors.Is(err, ErrCouponNotFound) ||
		errors.Is(err, ErrCouponInactive) ||
		errors.Is(err, ErrCouponExpired) ||
		errors.Is(err, ErrCouponUsageExceeded)
}
