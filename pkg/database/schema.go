package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// schema is applied at startup. DDL is idempotent so repeated boots are safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		catalogue_id   TEXT NOT NULL,
		id             TEXT NOT NULL,
		name           TEXT NOT NULL DEFAULT '',
		price          NUMERIC(12,2) NOT NULL,
		discount_price NUMERIC(12,2),
		stock          INT NOT NULL DEFAULT 0,
		PRIMARY KEY (catalogue_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS coupons (
		catalogue_id   TEXT NOT NULL,
		code           TEXT NOT NULL,
		discount_type  TEXT NOT NULL,
		discount_value NUMERIC(12,2) NOT NULL,
		max_discount   NUMERIC(12,2),
		min_cart_value NUMERIC(12,2) NOT NULL DEFAULT 0,
		valid_until    TIMESTAMPTZ,
		max_usage      INT,
		usage_count    INT NOT NULL DEFAULT 0,
		is_active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (catalogue_id, code)
	)`,
	`CREATE TABLE IF NOT EXISTS carts (
		id           UUID PRIMARY KEY,
		catalogue_id TEXT NOT NULL,
		owner_key    TEXT NOT NULL,
		coupon_code  TEXT,
		coupon_type  TEXT,
		coupon_value NUMERIC(12,2),
		coupon_max_discount NUMERIC(12,2),
		subtotal     NUMERIC(12,2) NOT NULL DEFAULT 0,
		discount     NUMERIC(12,2) NOT NULL DEFAULT 0,
		total        NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (catalogue_id, owner_key)
	)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		cart_id    UUID NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
		product_id TEXT NOT NULL,
		quantity   INT NOT NULL,
		unit_price NUMERIC(12,2) NOT NULL,
		position   INT NOT NULL,
		PRIMARY KEY (cart_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id           UUID PRIMARY KEY,
		catalogue_id TEXT NOT NULL,
		owner_key    TEXT NOT NULL,
		coupon_code  TEXT,
		items        JSONB NOT NULL,
		subtotal     NUMERIC(12,2) NOT NULL,
		discount     NUMERIC(12,2) NOT NULL,
		total        NUMERIC(12,2) NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate applies the schema to the database.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, ddl := range schema {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	log.Info().Msg("database schema up to date")
	return nil
}
