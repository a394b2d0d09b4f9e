package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/catalogue-cart-service/internal/model"
	"github.com/fairyhunter13/catalogue-cart-service/internal/service"
	"github.com/fairyhunter13/catalogue-cart-service/pkg/database"
)

// CartPoolInterface defines the database operations CartRepository needs
// outside of a transaction. This allows for easier testing with mocks.
type CartPoolInterface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// CartRepository provides data access for carts and their line items using pgx.
type CartRepository struct {
	pool CartPoolInterface
}

// NewCartRepository creates a new CartRepository with the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// NewCartRepositoryWithPool creates a new CartRepository with a custom pool
// interface. This is primarily used for testing.
func NewCartRepositoryWithPool(pool CartPoolInterface) *CartRepository {
	return &CartRepository{pool: pool}
}

const cartColumns = `id, catalogue_id, owner_key, coupon_code, coupon_type, coupon_value, coupon_max_discount, subtotal, discount, total, created_at, updated_at`

// Get retrieves the cart for a (catalogue, owner) pair without locking it.
// Returns nil, nil when no cart exists (service layer handles this).
func (r *CartRepository) Get(ctx context.Context, catalogueID, ownerKey string) (*model.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE catalogue_id = $1 AND owner_key = $2`
	cart, err := scanCart(r.pool.QueryRow(ctx, query, catalogueID, ownerKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if err := r.loadItems(ctx, r.pool, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// GetForUpdate retrieves the cart with a row lock (SELECT FOR UPDATE).
// Concurrent mutations of the same cart queue behind this lock until the
// transaction completes. Returns nil, nil when no cart exists.
func (r *CartRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, catalogueID, ownerKey string) (*model.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE catalogue_id = $1 AND owner_key = $2 FOR UPDATE`
	cart, err := scanCart(tx.QueryRow(ctx, query, catalogueID, ownerKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart for update: %w", err)
	}
	if err := r.loadItems(ctx, tx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Insert creates the cart row and its items.
// Returns service.ErrConflict when a concurrent first-add already created a
// cart for the same (catalogue, owner) pair.
func (r *CartRepository) Insert(ctx context.Context, tx database.TxQuerier, cart *model.Cart) error {
	now := time.Now().UTC()
	cart.CreatedAt = now
	cart.UpdatedAt = now

	code, ctype, cvalue, cmax := flattenCoupon(cart.AppliedCoupon)
	_, err := tx.Exec(ctx,
		`INSERT INTO carts (id, catalogue_id, owner_key, coupon_code, coupon_type, coupon_value, coupon_max_discount, subtotal, discount, total, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		cart.ID, cart.CatalogueID, cart.OwnerKey, code, ctype, cvalue, cmax,
		cart.Subtotal, cart.Discount, cart.Total, cart.CreatedAt, cart.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrConflict
		}
		return fmt.Errorf("insert cart: %w", err)
	}
	return r.replaceItems(ctx, tx, cart)
}

// Save persists the cart row and replaces its items. Must be called on a
// cart previously locked with GetForUpdate.
func (r *CartRepository) Save(ctx context.Context, tx database.TxQuerier, cart *model.Cart) error {
	cart.UpdatedAt = time.Now().UTC()

	code, ctype, cvalue, cmax := flattenCoupon(cart.AppliedCoupon)
	_, err := tx.Exec(ctx,
		`UPDATE carts SET coupon_code = $2, coupon_type = $3, coupon_value = $4, coupon_max_discount = $5,
		 subtotal = $6, discount = $7, total = $8, updated_at = $9 WHERE id = $1`,
		cart.ID, code, ctype, cvalue, cmax,
		cart.Subtotal, cart.Discount, cart.Total, cart.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update cart: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cart.ID); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}
	return r.replaceItems(ctx, tx, cart)
}

// Delete removes the cart; items go with it via ON DELETE CASCADE.
func (r *CartRepository) Delete(ctx context.Context, tx database.TxQuerier, cartID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("delete cart %s: %w", cartID, err)
	}
	return nil
}

func (r *CartRepository) replaceItems(ctx context.Context, tx database.TxQuerier, cart *model.Cart) error {
	for i, item := range cart.Items {
		_, err := tx.Exec(ctx,
			`INSERT INTO cart_items (cart_id, product_id, quantity, unit_price, position) VALUES ($1, $2, $3, $4, $5)`,
			cart.ID, item.ProductID, item.Quantity, item.UnitPrice, i)
		if err != nil {
			return fmt.Errorf("insert cart item %s: %w", item.ProductID, err)
		}
	}
	return nil
}

func (r *CartRepository) loadItems(ctx context.Context, q CartPoolInterface, cart *model.Cart) error {
	rows, err := q.Query(ctx,
		`SELECT product_id, quantity, unit_price FROM cart_items WHERE cart_id = $1 ORDER BY position`,
		cart.ID)
	if err != nil {
		return fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate cart items: %w", err)
	}

	cart.Items = items
	return nil
}

func scanCart(row pgx.Row) (*model.Cart, error) {
	var cart model.Cart
	var code, ctype *string
	var cvalue, cmax decimal.NullDecimal
	err := row.Scan(
		&cart.ID,
		&cart.CatalogueID,
		&cart.OwnerKey,
		&code,
		&ctype,
		&cvalue,
		&cmax,
		&cart.Subtotal,
		&cart.Discount,
		&cart.Total,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if code != nil && ctype != nil && cvalue.Valid {
		rule := model.DiscountRule{
			Type:  model.DiscountType(*ctype),
			Value: cvalue.Decimal,
		}
		if cmax.Valid {
			rule.MaxDiscount = &cmax.Decimal
		}
		cart.AppliedCoupon = &model.AppliedCoupon{Code: *code, Rule: rule}
	}
	return &cart, nil
}

func flattenCoupon(applied *model.AppliedCoupon) (code, ctype *string, value, maxDiscount decimal.NullDecimal) {
	if applied == nil {
		return nil, nil, decimal.NullDecimal{}, decimal.NullDecimal{}
	}
	t := string(applied.Rule.Type)
	code = &applied.Code
	ctype = &t
	value = decimal.NullDecimal{Decimal: applied.Rule.Value, Valid: true}
	if applied.Rule.MaxDiscount != nil {
		maxDiscount = decimal.NullDecimal{Decimal: *applied.Rule.MaxDiscount, Valid: true}
	}
	return code, ctype, value, maxDiscount
}
