package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/catalogue-cart-service/internal/model"
)

// CouponService provides seller-side coupon management for a catalogue.
type CouponService struct {
	coupons CouponRepositoryInterface
}

// NewCouponService creates a new CouponService with the given repository.
func NewCouponService(coupons CouponRepositoryInterface) *CouponService {
	return &CouponService{coupons: coupons}
}

var oneHundred = decimal.NewFromInt(100)

// Create creates a new coupon in the catalogue from the request.
// Returns ErrCouponExists if the code is already taken within the catalogue.
// Returns ErrInvalidRequest if the discount parameters are out of range.
func (s *CouponService) Create(ctx context.Context, catalogueID string, req *model.CreateCouponRequest) error {
	// The handler validates shape; ranges are checked here
	if req == nil {
		return ErrInvalidRequest
	}
	if err := validateDiscount(req); err != nil {
		return err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	coupon := &model.Coupon{
		CatalogueID:   catalogueID,
		Code:          model.NormalizeCode(req.Code),
		DiscountType:  model.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		MaxDiscount:   req.MaxDiscount,
		MinCartValue:  req.MinCartValue,
		ValidUntil:    req.ValidUntil,
		MaxUsage:      req.MaxUsage,
		IsActive:      active,
	}
	return s.coupons.Insert(ctx, coupon)
}

// GetByCode retrieves a coupon by its code within the catalogue.
// Returns ErrCouponNotFound if the coupon doesn't exist.
func (s *CouponService) GetByCode(ctx context.Context, catalogueID, code string) (*model.CouponResponse, error) {
	coupon, err := s.coupons.GetByCode(ctx, catalogueID, model.NormalizeCode(code))
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	return &model.CouponResponse{
		Code:          coupon.Code,
		DiscountType:  coupon.DiscountType,
		DiscountValue: coupon.DiscountValue,
		MaxDiscount:   coupon.MaxDiscount,
		MinCartValue:  coupon.MinCartValue,
		ValidUntil:    coupon.ValidUntil,
		MaxUsage:      coupon.MaxUsage,
		UsageCount:    coupon.UsageCount,
		IsActive:      coupon.IsActive,
	}, nil
}

func validateDiscount(req *model.CreateCouponRequest) error {
	switch model.DiscountType(req.DiscountType) {
	case model.DiscountPercentage:
		if req.DiscountValue.LessThanOrEqual(decimal.Zero) || req.DiscountValue.GreaterThan(oneHundred) {
			return fmt.Errorf("%w: percentage value must be in (0, 100]", ErrInvalidRequest)
		}
		if req.MaxDiscount != nil && req.MaxDiscount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: max_discount must be positive", ErrInvalidRequest)
		}
	case model.DiscountFlat:
		if req.DiscountValue.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: flat value must be positive", ErrInvalidRequest)
		}
		if req.MaxDiscount != nil {
			return fmt.Errorf("%w: max_discount only applies to percentage coupons", ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: unknown discount type", ErrInvalidRequest)
	}
	if req.MinCartValue.IsNegative() {
		return fmt.Errorf("%w: min_cart_value cannot be negative", ErrInvalidRequest)
	}
	return nil
}
