package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/catalogue-cart-service/internal/model"
	"github.com/fairyhunter13/catalogue-cart-service/internal/service"
	"github.com/fairyhunter13/catalogue-cart-service/pkg/database"
)

// PoolInterface defines the database operations needed by CouponRepository.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CouponRepository provides data access for coupons using pgx.
type CouponRepository struct {
	pool PoolInterface
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a new CouponRepository with a custom
// pool interface. This is primarily used for testing.
func NewCouponRepositoryWithPool(pool PoolInterface) *CouponRepository {
	return &CouponRepository{pool: pool}
}

const couponColumns = `catalogue_id, code, discount_type, discount_value, max_discount, min_cart_value, valid_until, max_usage, usage_count, is_active, created_at`

// Insert inserts a new coupon into the database.
// Returns service.ErrCouponExists if the code is already taken within the
// catalogue.
func (r *CouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO coupons (catalogue_id, code, discount_type, discount_value, max_discount, min_cart_value, valid_until, max_usage, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		coupon.CatalogueID, coupon.Code, string(coupon.DiscountType), coupon.DiscountValue,
		nullDecimal(coupon.MaxDiscount), coupon.MinCartValue, coupon.ValidUntil, coupon.MaxUsage, coupon.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrCouponExists
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// GetByCode retrieves a coupon by its (catalogue, code) key.
// Returns nil, nil if the coupon is not found (service layer handles this).
func (r *CouponRepository) GetByCode(ctx context.Context, catalogueID, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE catalogue_id = $1 AND code = $2`

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, catalogueID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get coupon %s: %w", code, err)
	}
	return coupon, nil
}

// GetByCodeForUpdate retrieves a coupon with a row lock (SELECT FOR UPDATE),
// so the usage counter cannot move under a checkout in progress.
// Returns service.ErrCouponNotFound if the coupon doesn't exist.
func (r *CouponRepository) GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, catalogueID, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE catalogue_id = $1 AND code = $2 FOR UPDATE`

	coupon, err := scanCoupon(tx.QueryRow(ctx, query, catalogueID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update %s: %w", code, err)
	}
	return coupon, nil
}

// IncrementUsage bumps the coupon's redemption counter by 1. Called only at
// order completion, within the checkout transaction, after locking the row.
func (r *CouponRepository) IncrementUsage(ctx context.Context, tx database.TxQuerier, catalogueID, code string) error {
	query := `UPDATE coupons SET usage_count = usage_count + 1 WHERE catalogue_id = $1 AND code = $2`

	_, err := tx.Exec(ctx, query, catalogueID, code)
	if err != nil {
		return fmt.Errorf("increment usage for %s: %w", code, err)
	}
	return nil
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var coupon model.Coupon
	var discountType string
	var maxDiscount decimal.NullDecimal
	err := row.Scan(
		&coupon.CatalogueID,
		&coupon.Code,
		&discountType,
		&coupon.DiscountValue,
		&maxDiscount,
		&coupon.MinCartValue,
		&coupon.ValidUntil,
		&coupon.MaxUsage,
		&coupon.UsageCount,
		&coupon.IsActive,
		&coupon.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	coupon.DiscountType = model.DiscountType(discountType)
	if maxDiscount.Valid {
		coupon.MaxDiscount = &maxDiscount.Decimal
	}
	return &coupon, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
