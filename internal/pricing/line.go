package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Line is one cart row. ProductID 0 means no product has been picked yet.
type Line struct {
	ProductID     uint            `json:"product_id"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	DiscountPct   decimal.Decimal `json:"discount_pct"`
	PointsPerUnit int             `json:"points_per_unit"`
}

// EffectiveUnit is the unit price after the per-line discount.
func (l Line) EffectiveUnit() decimal.Decimal {
	pct := ClampPct(l.DiscountPct)
	return l.UnitPrice.Mul(decimal.NewFromInt(1).Sub(pct.Div(hundred)))
}

// Total is EffectiveUnit times quantity.
func (l Line) Total() decimal.Decimal {
	return l.EffectiveUnit().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Amount is Total rounded to cents. It is the stored line total and the
// figure the subtotal sums.
func (l Line) Amount() decimal.Decimal {
	return l.Total().Round(2)
}

// counts reports whether the row takes part in the invoice totals.
func (l Line) counts() bool {
	return l.ProductID != 0 && l.Quantity > 0
}

// ClampPct clamps a percentage to [0, 100].
func ClampPct(pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// ClampQuantity clamps an entered quantity to [1, max(1, stock)].
// A zero or negative stock reading leaves only the floor of 1, so a stale
// stock count never blocks a sale at the register.
func ClampQuantity(qty, stock int) int {
	upper := stock
	if upper < 1 {
		upper = 1
	}
	if qty < 1 {
		return 1
	}
	if qty > upper {
		return upper
	}
	return qty
}
