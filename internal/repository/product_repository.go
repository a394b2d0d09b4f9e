package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/catalogue-cart-service/internal/model"
	"github.com/fairyhunter13/catalogue-cart-service/pkg/database"
)

// ProductRepository reads the catalogue's product records for pricing and
// stock checks. Lookups happen inside the cart mutation's transaction so the
// stock check and the cart write see one consistent snapshot.
type ProductRepository struct{}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

// GetByID retrieves a product by its (catalogue, id) key through the given
// querier. Returns nil, nil if the product is not found (service layer
// handles this).
func (r *ProductRepository) GetByID(ctx context.Context, q database.TxQuerier, catalogueID, productID string) (*model.Product, error) {
	query := `SELECT catalogue_id, id, name, price, discount_price, stock FROM products WHERE catalogue_id = $1 AND id = $2`

	var product model.Product
	var discountPrice decimal.NullDecimal
	err := q.QueryRow(ctx, query, catalogueID, productID).Scan(
		&product.CatalogueID,
		&product.ID,
		&product.Name,
		&product.Price,
		&discountPrice,
		&product.Stock,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}

	if discountPrice.Valid {
		product.DiscountPrice = &discountPrice.Decimal
	}
	return &product, nil
}
