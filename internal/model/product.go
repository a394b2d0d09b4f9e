package model

import "github.com/shopspring/decimal"

// Product is the read-side view of a catalogue product needed by the cart:
// pricing and available stock. The catalogue service owns the full record.
type Product struct {
	ID            string           `json:"id"`
	CatalogueID   string           `json:"catalogue_id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
	Stock         int              `json:"stock"`
}

// EffectivePrice returns the price a new cart line snapshots: the discount
// price when one is set, else the base price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}
