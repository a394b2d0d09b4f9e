package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/catalogue-cart-service/internal/model"
)

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

func items(lines ...model.CartItem) []model.CartItem {
	return lines
}

func TestCompute_EmptyCart(t *testing.T) {
	totals := Compute(nil, nil)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Discount.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestCompute_NoDiscountRule(t *testing.T) {
	totals := Compute(items(
		model.CartItem{ProductID: "p1", Quantity: 2, UnitPrice: dec("199.50")},
		model.CartItem{ProductID: "p2", Quantity: 1, UnitPrice: dec("50.00")},
	), nil)

	assert.True(t, totals.Subtotal.Equal(dec("449.00")), "subtotal: %s", totals.Subtotal)
	assert.True(t, totals.Discount.IsZero())
	assert.True(t, totals.Total.Equal(dec("449.00")))
}

func TestCompute_PercentageDiscountCappedByMaxDiscount(t *testing.T) {
	rule := &model.DiscountRule{
		Type:        model.DiscountPercentage,
		Value:       dec("50"),
		MaxDiscount: decPtr("100"),
	}

	totals := Compute(items(
		model.CartItem{ProductID: "p1", Quantity: 1, UnitPrice: dec("500")},
	), rule)

	assert.True(t, totals.Discount.Equal(dec("100")), "discount should hit the cap, got %s", totals.Discount)
	assert.True(t, totals.Total.Equal(dec("400")))
}

func TestCompute_PercentageDiscountBelowCap(t *testing.T) {
	rule := &model.DiscountRule{
		Type:        model.DiscountPercentage,
		Value:       dec("10"),
		MaxDiscount: decPtr("500"),
	}

	totals := Compute(items(
		model.CartItem{ProductID: "p1", Quantity: 2, UnitPrice: dec("150")},
	), rule)

	assert.True(t, totals.Discount.Equal(dec("30")))
	assert.True(t, totals.Total.Equal(dec("270")))
}

func TestCompute_PercentageDiscountNoCap(t *testing.T) {
	rule := &model.DiscountRule{
		Type:  model.DiscountPercentage,
		Value: dec("25"),
	}

	totals := Compute(items(
		model.CartItem{ProductID: "p1", Quantity: 1, UnitPrice: dec("1000")},
	), rule)

	assert.True(t, totals.Discount.Equal(dec("250")))
	assert.True(t, totals.Total.Equal(dec("750")))
}

func TestCompute_FlatDiscountClampedAtSubtotal(t *testing.T) {
	rule := &model.DiscountRule{
		Type:  model.DiscountFlat,
		Value: dec("1000"),
	}

	totals := Compute(items(
		model.CartItem{ProductID: "p1", Quantity: 1, UnitPrice: dec("300")},
	), rule)

	assert.True(t, totals.Discount.Equal(dec("300")), "flat discount must not exceed subtotal")
	assert.True(t, totals.Total.IsZero(), "total must be floored at zero")
}

func TestCompute_FlatDiscountBelowSubtotal(t *testing.T) {
	rule := &model.DiscountRule{
		Type:  model.DiscountFlat,
		Value: dec("50"),
	}

	totals := Compute(items(
		model.CartItem{ProductID: "p1", Quantity: 3, UnitPrice: dec("100")},
	), rule)

	assert.True(t, totals.Discount.Equal(dec("50")))
	assert.True(t, totals.Total.Equal(dec("250")))
}

func TestCompute_TotalNeverNegative(t *testing.T) {
	rules := []*model.DiscountRule{
		{Type: model.DiscountFlat, Value: dec("99999")},
		{Type: model.DiscountPercentage, Value: dec("100")},
	}

	for _, rule := range rules {
		totals := Compute(items(
			model.CartItem{ProductID: "p1", Quantity: 1, UnitPrice: dec("0.01")},
		), rule)
		assert.False(t, totals.Total.IsNegative(), "total went negative for rule %+v", rule)
	}
}

func TestCompute_NoIntermediateRounding(t *testing.T) {
	// 3 lines of 0.333 each: intermediate per-line rounding would give
	// 0.33*3 = 0.99; a single final rounding gives 1.00.
	totals := Compute(items(
		model.CartItem{ProductID: "p1", Quantity: 1, UnitPrice: dec("0.333")},
		model.CartItem{ProductID: "p2", Quantity: 1, UnitPrice: dec("0.333")},
		model.CartItem{ProductID: "p3", Quantity: 1, UnitPrice: dec("0.333")},
	), nil)

	assert.True(t, totals.Subtotal.Equal(dec("1.00")), "expected single final rounding, got %s", totals.Subtotal)
}

func TestCompute_HalfUpRounding(t *testing.T) {
	totals := Compute(items(
		model.CartItem{ProductID: "p1", Quantity: 1, UnitPrice: dec("1.005")},
	), nil)

	assert.True(t, totals.Subtotal.Equal(dec("1.01")), "half-up rounding expected, got %s", totals.Subtotal)
}

func TestCompute_DeterministicAcrossItemOrder(t *testing.T) {
	rule := &model.DiscountRule{
		Type:        model.DiscountPercentage,
		Value:       dec("15"),
		MaxDiscount: decPtr("40"),
	}
	a := model.CartItem{ProductID: "a", Quantity: 3, UnitPrice: dec("33.33")}
	b := model.CartItem{ProductID: "b", Quantity: 1, UnitPrice: dec("129.99")}
	c := model.CartItem{ProductID: "c", Quantity: 7, UnitPrice: dec("5.55")}

	first := Compute(items(a, b, c), rule)
	second := Compute(items(c, a, b), rule)
	third := Compute(items(b, c, a), rule)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.Subtotal.Equal(third.Subtotal))
	assert.True(t, first.Discount.Equal(second.Discount))
	assert.True(t, first.Discount.Equal(third.Discount))
	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.Total.Equal(third.Total))
}
