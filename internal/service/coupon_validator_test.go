package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/catalogue-cart-service/internal/model"
	"github.com/fairyhunter13/catalogue-cart-service/pkg/database"
)

// mockCouponRepository is a mock implementation of CouponRepositoryInterface.
type mockCouponRepository struct {
	insertFn             func(ctx context.Context, coupon *model.Coupon) error
	getByCodeFn          func(ctx context.Context, catalogueID, code string) (*model.Coupon, error)
	getByCodeForUpdateFn func(ctx context.Context, tx database.TxQuerier, catalogueID, code string) (*model.Coupon, error)
	incrementUsageFn     func(ctx context.Context, tx database.TxQuerier, catalogueID, code string) error
}

func (m *mockCouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, coupon)
	}
	return nil
}

func (m *mockCouponRepository) GetByCode(ctx context.Context, catalogueID, code string) (*model.Coupon, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, catalogueID, code)
	}
	return nil, nil
}

func (m *mockCouponRepository) GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, catalogueID, code string) (*model.Coupon, error) {
	if m.getByCodeForUpdateFn != nil {
		return m.getByCodeForUpdateFn(ctx, tx, catalogueID, code)
	}
	return nil, nil
}

func (m *mockCouponRepository) IncrementUsage(ctx context.Context, tx database.TxQuerier, catalogueID, code string) error {
	if m.incrementUsageFn != nil {
		return m.incrementUsageFn(ctx, tx, catalogueID, code)
	}
	return nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(i int) *int {
	return &i
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func activeCoupon() *model.Coupon {
	return &model.Coupon{
		CatalogueID:   "cat-1",
		Code:          "SAVE10",
		DiscountType:  model.DiscountPercentage,
		DiscountValue: dec("10"),
		MinCartValue:  decimal.Zero,
		IsActive:      true,
	}
}

func TestCouponValidator_Validate_Success(t *testing.T) {
	coupon := activeCoupon()
	coupon.MaxDiscount = decPtr("100")
	repo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, catalogueID, code string) (*model.Coupon, error) {
			return coupon, nil
		},
	}

	v := NewCouponValidator(repo)
	rule, err := v.Validate(context.Background(), "cat-1", "SAVE10", dec("500"))

	require.NoError(t, err)
	assert.Equal(t, model.DiscountPercentage, rule.Type)
	assert.True(t, rule.Value.Equal(dec("10")))
	require.NotNil(t, rule.MaxDiscount)
	assert.True(t, rule.MaxDiscount.Equal(dec("100")))
}

func TestCouponValidator_Validate_NormalizesCode(t *testing.T) {
	var lookedUp string
	repo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, catalogueID, code string) (*model.Coupon, error) {
			lookedUp = code
			return activeCoupon(), nil
		},
	}

	v := NewCouponValidator(repo)
	_, err := v.Validate(context.Background(), "cat-1", "  save10 ", dec("500"))

	require.NoError(t, err)
	assert.Equal(t, "SAVE10", lookedUp, "codes are compared uppercase and trimmed")
}

func TestCouponValidator_Validate_NotFound(t *testing.T) {
	repo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, catalogueID, code string) (*model.Coupon, error) {
			return nil, nil
		},
	}

	v := NewCouponValidator(repo)
	rule, err := v.Validate(context.Background(), "cat-1", "NOPE", dec("500"))

	assert.Nil(t, rule)
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestCouponValidator_Validate_Inactive(t *testing.T) {
	coupon := activeCoupon()
	coupon.IsActive = false
	repo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, catalogueID, code string) (*model.Coupon, error) {
			return coupon, nil
		},
	}

	v := NewCouponValidator(repo)
	_, err := v.Validate(context.Background(), "cat-1", "SAVE10", dec("500"))

	assert.ErrorIs(t, err, ErrCouponInactive)
}

func TestCouponValidator_Validate_Expired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	coupon := activeCoupon()
	coupon.ValidUntil = timePtr(now.Add(-time.Hour))
	repo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, catalogueID, code string) (*model.Coupon, error) {
			return coupon, nil
		},
	}

	v := NewCouponValidatorAt(repo, func() time.Time { return now })
	_, err := v.Validate(context.Background(), "cat-1", "SAVE10", dec("500"))

	assert.ErrorIs(t, err, ErrCouponExpired)
}

func TestCouponValidator_Validate_NotYetExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	coupon := activeCoupon()
	coupon.ValidUntil = timePtr(now) // boundary: now == validUntil is still valid
	repo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, catalogueID, code string) (*model.Coupon, error) {
			return coupon, nil
		},
	}

	v := NewCouponValidatorAt(repo, func() time.Time { return now })
	_, err := v.Validate(context.Background(), "cat-1", "SAVE10", dec("500"))

	assert.NoError(t, err)
}

func TestCouponValidator_Validate_UsageExceeded(t *testing.T) {
	coupon := activeCoupon()
	coupon.MaxUsage = intPtr(5)
	coupon.UsageCount = 5
	repo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, catalogueID, code string) (*model.Coupon, error) {
			return coupon, nil
		},
	}

	v := NewCouponValidator(repo)
	_, err := v.Validate(context.Background(), "cat-1", "SAVE10", dec("500"))

	assert.ErrorIs(t, err, ErrCouponUsageExceeded)
}

func TestCouponValidator_Validate_UsageBelowCap(t *testing.T) {
	coupon := activeCoupon()
	coupon.MaxUsage = intPtr(5)
	coupon.UsageCount = 4
	repo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, catalogueID, code string) (*model.Coupon, error) {
			return coupon, nil
		},
	}

	v := NewCouponValidator(repo)
	_, err := v.Validate(context.Background(), "cat-1", "SAVE10", dec("500"))

	assert.NoError(t, err)
}

func TestCouponValidator_Validate_MinCartNotMet(t *testing.T) {
	coupon := activeCoupon()
	coupon.MinCartValue = dec("1000")
	repo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, catalogueID, code string) (*model.Coupon, error) {
			return coupon, nil
		},
	}

	v := NewCouponValidator(repo)
	rule, err := v.Validate(context.Background(), "cat-1", "SAVE10", dec("500"))

	assert.Nil(t, rule)
	var minErr *MinCartNotMetError
	require.ErrorAs(t, err, &minErr)
	assert.True(t, minErr.Required.Equal(dec("1000")), "rejection carries the required minimum")
}

func TestCouponValidator_Validate_RepositoryError(t *testing.T) {
	repoErr := errors.New("connection refused")
	repo := &mockCouponRepository{
		getByCodeFn: func(ctx context.Context, catalogueID, code string) (*model.Coupon, error) {
			return nil, repoErr
		},
	}

	v := NewCouponValidator(repo)
	_, err := v.Validate(context.Background(), "cat-1", "SAVE10", dec("500"))

	require.Error(t, err)
	assert.ErrorIs(t, err, repoErr)
	assert.False(t, IsCouponRejection(err), "infrastructure errors are not rejections")
}

func TestIsCouponRejection(t *testing.T) {
	assert.True(t, IsCouponRejection(ErrCouponNotFound))
	assert.True(t, IsCouponRejection(ErrCouponInactive))
	assert.True(t, IsCouponRejection(ErrCouponExpired))
	assert.True(t, IsCouponRejection(ErrCouponUsageExceeded))
	assert.True(t, IsCouponRejection(&MinCartNotMetError{Required: dec("100")}))
	assert.False(t, IsCouponRejection(errors.New("network down")))
	assert.False(t, IsCouponRejection(ErrConflict))
}
