package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fairyhunter13/catalogue-cart-service/internal/model"
	"github.com/fairyhunter13/catalogue-cart-service/pkg/database"
)

// OrderRepository persists order snapshots taken at checkout.
type OrderRepository struct{}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

// Insert writes the order within the checkout transaction. Line items are
// stored as a JSON document; orders are immutable snapshots, never queried
// by line.
func (r *OrderRepository) Insert(ctx context.Context, tx database.TxQuerier, order *model.Order) error {
	order.CreatedAt = time.Now().UTC()

	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO orders (id, catalogue_id, owner_key, coupon_code, items, subtotal, discount, total, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		order.ID, order.CatalogueID, order.OwnerKey, order.CouponCode, items,
		order.Subtotal, order.Discount, order.Total, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}
