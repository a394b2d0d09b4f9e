// Package pricing computes cart totals. Compute is a pure function so a
// cart's stored totals can be reproduced from its items and discount rule at
// any time.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/catalogue-cart-service/internal/model"
)

// Totals holds the derived money fields of a cart, rounded to two decimal
// places.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// Compute derives subtotal, discount and total from the given line items and
// optional discount rule.
//
// The subtotal is the sum of unitPrice*quantity over all lines. A flat
// discount is clamped at the subtotal; a percentage discount is taken from
// the subtotal and capped by the rule's MaxDiscount when set. Rounding
// (half-up, two decimal places) happens once at the end so per-line rounding
// error cannot compound across large carts. Total never goes below zero.
func Compute(items []model.CartItem, rule *model.DiscountRule) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}

	discount := decimal.Zero
	if rule != nil {
		switch rule.Type {
		case model.DiscountFlat:
			discount = decimal.Min(rule.Value, subtotal)
		case model.DiscountPercentage:
			discount = subtotal.Mul(rule.Value).Div(oneHundred)
			if rule.MaxDiscount != nil {
				discount = decimal.Min(discount, *rule.MaxDiscount)
			}
		}
	}

	// Single final rounding step. Round rounds half away from zero, which
	// is half-up for the non-negative amounts handled here.
	subtotal = subtotal.Round(2)
	discount = discount.Round(2)
	total := decimal.Max(subtotal.Sub(discount), decimal.Zero)

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Total:    total,
	}
}
