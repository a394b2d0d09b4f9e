package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/catalogue-cart-service/internal/model"
	"github.com/fairyhunter13/catalogue-cart-service/internal/pricing"
	"github.com/fairyhunter13/catalogue-cart-service/pkg/database"
)

// CartRepositoryInterface defines the interface for cart data access.
type CartRepositoryInterface interface {
	Get(ctx context.Context, catalogueID, ownerKey string) (*model.Cart, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, catalogueID, ownerKey string) (*model.Cart, error)
	Insert(ctx context.Context, tx database.TxQuerier, cart *model.Cart) error
	Save(ctx context.Context, tx database.TxQuerier, cart *model.Cart) error
	Delete(ctx context.Context, tx database.TxQuerier, cartID uuid.UUID) error
}

// ProductRepositoryInterface defines the interface for product lookups.
// The catalogue service owns products; the cart only reads price and stock.
type ProductRepositoryInterface interface {
	GetByID(ctx context.Context, tx database.TxQuerier, catalogueID, productID string) (*model.Product, error)
}

// OrderRepositoryInterface defines the interface for order persistence.
type OrderRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, order *model.Order) error
}

// CouponValidatorInterface defines the interface for coupon validation.
type CouponValidatorInterface interface {
	Validate(ctx context.Context, catalogueID, code string, subtotal decimal.Decimal) (*model.DiscountRule, error)
	Check(coupon *model.Coupon, subtotal decimal.Decimal) (*model.DiscountRule, error)
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CartService owns cart state for (catalogue, owner) pairs. Every mutation
// runs as one transaction: lock the cart row, apply the line-item or coupon
// change, re-validate any applied coupon, recompute totals, persist.
// Concurrent mutations of the same cart queue behind the row lock, so no
// interleaved partial writes are possible; the only remaining race is two
// first-adds creating the same cart, which the unique (catalogue, owner)
// index resolves into a retryable ErrConflict for the loser.
type CartService struct {
	pool      TxBeginner
	carts     CartRepositoryInterface
	products  ProductRepositoryInterface
	coupons   CouponRepositoryInterface
	orders    OrderRepositoryInterface
	validator CouponValidatorInterface
}

// CartServiceDeps bundles the collaborators of a CartService.
type CartServiceDeps struct {
	Carts     CartRepositoryInterface
	Products  ProductRepositoryInterface
	Coupons   CouponRepositoryInterface
	Orders    OrderRepositoryInterface
	Validator CouponValidatorInterface
}

// NewCartService creates a CartService with the given pool and collaborators.
func NewCartService(pool *pgxpool.Pool, deps CartServiceDeps) *CartService {
	return NewCartServiceWithTxBeginner(pool, deps)
}

// NewCartServiceWithTxBeginner creates a CartService with a custom TxBeginner.
// Primarily used for testing.
func NewCartServiceWithTxBeginner(pool TxBeginner, deps CartServiceDeps) *CartService {
	return &CartService{
		pool:      pool,
		carts:     deps.Carts,
		products:  deps.Products,
		coupons:   deps.Coupons,
		orders:    deps.Orders,
		validator: deps.Validator,
	}
}

// GetCart returns the live cart for the identity, or an empty unpersisted
// view when none exists yet (first add-to-cart creates the row).
func (s *CartService) GetCart(ctx context.Context, catalogueID string, identity model.Identity) (*model.Cart, error) {
	ownerKey, ok := identity.OwnerKey()
	if !ok {
		return nil, ErrMissingIdentity
	}

	cart, err := s.carts.Get(ctx, catalogueID, ownerKey)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart == nil {
		return model.NewCart(catalogueID, ownerKey), nil
	}
	return cart, nil
}

// AddItem adds quantity of the product to the cart, creating the cart on
// first use. Re-adding a product already in the cart increments its line
// rather than duplicating it.
// Returns:
//   - ErrProductNotFound if the product is not in the catalogue
//   - OutOfStockError if the resulting quantity exceeds available stock
//   - ErrConflict if a concurrent first-add won the cart-creation race
func (s *CartService) AddItem(ctx context.Context, catalogueID string, identity model.Identity, productID string, quantity int) (*model.CartResult, error) {
	if quantity < 1 {
		return nil, ErrInvalidRequest
	}
	return s.mutate(ctx, catalogueID, identity, true, func(ctx context.Context, tx database.TxQuerier, cart *model.Cart) error {
		product, err := s.lookupProduct(ctx, tx, catalogueID, productID)
		if err != nil {
			return err
		}

		requested := quantity
		line := cart.Item(productID)
		if line != nil {
			requested += line.Quantity
		}
		if requested > product.Stock {
			return &OutOfStockError{ProductID: productID, Available: product.Stock}
		}

		if line != nil {
			line.Quantity = requested
			return nil
		}
		cart.Items = append(cart.Items, model.CartItem{
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: product.EffectivePrice(),
		})
		return nil
	})
}

// UpdateItem sets the line's quantity directly. A quantity of zero or below
// removes the line.
// Returns:
//   - ErrCartNotFound if no cart exists for the identity
//   - ErrItemNotFound if the product is not a line in the cart
//   - OutOfStockError if the quantity exceeds available stock
func (s *CartService) UpdateItem(ctx context.Context, catalogueID string, identity model.Identity, productID string, quantity int) (*model.CartResult, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, catalogueID, identity, productID)
	}
	return s.mutate(ctx, catalogueID, identity, false, func(ctx context.Context, tx database.TxQuerier, cart *model.Cart) error {
		line := cart.Item(productID)
		if line == nil {
			return ErrItemNotFound
		}

		product, err := s.lookupProduct(ctx, tx, catalogueID, productID)
		if err != nil {
			return err
		}
		if quantity > product.Stock {
			return &OutOfStockError{ProductID: productID, Available: product.Stock}
		}

		line.Quantity = quantity
		return nil
	})
}

// RemoveItem drops the product's line from the cart. A cart emptied by the
// removal also loses its applied coupon.
func (s *CartService) RemoveItem(ctx context.Context, catalogueID string, identity model.Identity, productID string) (*model.CartResult, error) {
	return s.mutate(ctx, catalogueID, identity, false, func(ctx context.Context, tx database.TxQuerier, cart *model.Cart) error {
		if !cart.RemoveItem(productID) {
			return ErrItemNotFound
		}
		return nil
	})
}

// ApplyCoupon validates code against the cart's current subtotal and, on
// success, attaches the resolved discount rule snapshot. On rejection the
// cart is left untouched and the typed reason is returned.
func (s *CartService) ApplyCoupon(ctx context.Context, catalogueID string, identity model.Identity, code string) (*model.CartResult, error) {
	return s.mutate(ctx, catalogueID, identity, false, func(ctx context.Context, tx database.TxQuerier, cart *model.Cart) error {
		if cart.IsEmpty() {
			return ErrCartEmpty
		}

		subtotal := pricing.Compute(cart.Items, nil).Subtotal
		rule, err := s.validator.Validate(ctx, catalogueID, code, subtotal)
		if err != nil {
			return err
		}

		cart.AppliedCoupon = &model.AppliedCoupon{
			Code: model.NormalizeCode(code),
			Rule: *rule,
		}
		return nil
	})
}

// RemoveCoupon detaches any applied coupon and recomputes totals. Removing
// from a cart without a coupon is a no-op.
func (s *CartService) RemoveCoupon(ctx context.Context, catalogueID string, identity model.Identity) (*model.CartResult, error) {
	return s.mutate(ctx, catalogueID, identity, false, func(ctx context.Context, tx database.TxQuerier, cart *model.Cart) error {
		cart.AppliedCoupon = nil
		return nil
	})
}

// Clear destroys the cart and everything on it. Clearing an absent cart is
// a no-op.
func (s *CartService) Clear(ctx context.Context, catalogueID string, identity model.Identity) error {
	ownerKey, ok := identity.OwnerKey()
	if !ok {
		return ErrMissingIdentity
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	cart, err := s.carts.GetForUpdate(ctx, tx, catalogueID, ownerKey)
	if err != nil {
		return fmt.Errorf("get cart for update: %w", err)
	}
	if cart == nil {
		return nil
	}

	if err := s.carts.Delete(ctx, tx, cart.ID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return tx.Commit(ctx)
}

// Checkout turns the cart into an order. In one transaction it locks the
// cart, re-validates any applied coupon against the live (locked) coupon
// row, recomputes totals, persists the order snapshot, increments coupon
// usage, and destroys the cart. A coupon that no longer qualifies is dropped
// and the order is priced without discount; usage only ever increments here,
// never on apply.
// Returns ErrCartEmpty when there is nothing to check out.
func (s *CartService) Checkout(ctx context.Context, catalogueID string, identity model.Identity) (*model.Order, error) {
	ownerKey, ok := identity.OwnerKey()
	if !ok {
		return nil, ErrMissingIdentity
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cart, err := s.carts.GetForUpdate(ctx, tx, catalogueID, ownerKey)
	if err != nil {
		return nil, fmt.Errorf("get cart for update: %w", err)
	}
	if cart == nil || cart.IsEmpty() {
		return nil, ErrCartEmpty
	}

	var rule *model.DiscountRule
	var couponCode *string
	if cart.AppliedCoupon != nil {
		coupon, err := s.coupons.GetByCodeForUpdate(ctx, tx, catalogueID, cart.AppliedCoupon.Code)
		if err != nil && !errors.Is(err, ErrCouponNotFound) {
			return nil, fmt.Errorf("lock coupon: %w", err)
		}
		if coupon != nil {
			subtotal := pricing.Compute(cart.Items, nil).Subtotal
			r, checkErr := s.validator.Check(coupon, subtotal)
			if checkErr != nil && !IsCouponRejection(checkErr) {
				return nil, checkErr
			}
			if checkErr == nil {
				rule = r
				code := coupon.Code
				couponCode = &code
			}
		}
	}

	totals := pricing.Compute(cart.Items, rule)
	order := &model.Order{
		ID:          uuid.New(),
		CatalogueID: catalogueID,
		OwnerKey:    ownerKey,
		Items:       cart.Items,
		CouponCode:  couponCode,
		Subtotal:    totals.Subtotal,
		Discount:    totals.Discount,
		Total:       totals.Total,
	}
	if err := s.orders.Insert(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	if couponCode != nil {
		if err := s.coupons.IncrementUsage(ctx, tx, catalogueID, *couponCode); err != nil {
			return nil, fmt.Errorf("increment coupon usage: %w", err)
		}
	}

	if err := s.carts.Delete(ctx, tx, cart.ID); err != nil {
		return nil, fmt.Errorf("delete cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return order, nil
}

// mutate runs one cart read-modify-write cycle: lock (or create) the cart,
// apply fn, re-validate the coupon, recompute totals, persist, commit. Any
// error from fn rolls the whole transaction back, leaving stored state
// untouched.
func (s *CartService) mutate(ctx context.Context, catalogueID string, identity model.Identity, createIfAbsent bool, fn func(ctx context.Context, tx database.TxQuerier, cart *model.Cart) error) (*model.CartResult, error) {
	ownerKey, ok := identity.OwnerKey()
	if !ok {
		return nil, ErrMissingIdentity
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cart, err := s.carts.GetForUpdate(ctx, tx, catalogueID, ownerKey)
	if err != nil {
		return nil, fmt.Errorf("get cart for update: %w", err)
	}
	created := false
	if cart == nil {
		if !createIfAbsent {
			return nil, ErrCartNotFound
		}
		cart = model.NewCart(catalogueID, ownerKey)
		created = true
	}

	if err := fn(ctx, tx, cart); err != nil {
		return nil, err
	}

	couponRemoved, err := s.refresh(ctx, cart)
	if err != nil {
		return nil, err
	}

	if created {
		err = s.carts.Insert(ctx, tx, cart)
	} else {
		err = s.carts.Save(ctx, tx, cart)
	}
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("persist cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &model.CartResult{Cart: cart, CouponRemoved: couponRemoved}, nil
}

// refresh re-validates any applied coupon against the cart's new contents and
// recomputes the derived totals. A coupon that no longer qualifies is
// silently detached and reported through the returned flag; an empty cart
// cannot hold a discount at all.
func (s *CartService) refresh(ctx context.Context, cart *model.Cart) (bool, error) {
	couponRemoved := false

	if cart.AppliedCoupon != nil && cart.IsEmpty() {
		cart.AppliedCoupon = nil
		couponRemoved = true
	}

	if cart.AppliedCoupon != nil {
		subtotal := pricing.Compute(cart.Items, nil).Subtotal
		rule, err := s.validator.Validate(ctx, cart.CatalogueID, cart.AppliedCoupon.Code, subtotal)
		switch {
		case err == nil:
			cart.AppliedCoupon.Rule = *rule
		case IsCouponRejection(err):
			cart.AppliedCoupon = nil
			couponRemoved = true
		default:
			return false, fmt.Errorf("revalidate coupon: %w", err)
		}
	}

	var rule *model.DiscountRule
	if cart.AppliedCoupon != nil {
		rule = &cart.AppliedCoupon.Rule
	}
	totals := pricing.Compute(cart.Items, rule)
	cart.Subtotal = totals.Subtotal
	cart.Discount = totals.Discount
	cart.Total = totals.Total

	return couponRemoved, nil
}

// lookupProduct resolves a product inside the mutation's transaction so the
// stock check and the cart write see one consistent snapshot.
func (s *CartService) lookupProduct(ctx context.Context, tx database.TxQuerier, catalogueID, productID string) (*model.Product, error) {
	product, err := s.products.GetByID(ctx, tx, catalogueID, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}
