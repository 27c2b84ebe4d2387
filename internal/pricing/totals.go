package pricing

import "github.com/shopspring/decimal"

var ten = decimal.NewFromInt(10)

// Cart is the explicit calculation state for one invoice. Callers pass it in;
// nothing here reads ambient storage.
type Cart struct {
	Lines        []Line          `json:"lines"`
	DiscountPct  decimal.Decimal `json:"discount_pct"`
	TaxPct       decimal.Decimal `json:"tax_pct"`
	RedeemPoints int             `json:"redeem_points"`
	// AvailablePoints is the customer's loyalty balance, 0 for walk-ins.
	AvailablePoints int `json:"available_points"`
}

// Totals is the derived invoice summary.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxBase        decimal.Decimal `json:"tax_base"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	GrossTotal     decimal.Decimal `json:"gross_total"`
	UsablePoints   int             `json:"usable_points"`
	Total          decimal.Decimal `json:"total"`
	EarnedPoints   int             `json:"earned_points"`
}

// Compute derives the invoice totals. It never fails: every input is clamped.
func Compute(c Cart) Totals {
	var t Totals

	t.Subtotal = decimal.Zero
	for _, l := range c.Lines {
		if !l.counts() {
			continue
		}
		t.Subtotal = t.Subtotal.Add(l.Amount())
	}

	discountPct := ClampPct(c.DiscountPct)
	taxPct := c.TaxPct
	if taxPct.IsNegative() {
		taxPct = decimal.Zero
	}

	t.DiscountAmount = t.Subtotal.Mul(discountPct).Div(hundred)
	t.TaxBase = decimal.Max(decimal.Zero, t.Subtotal.Sub(t.DiscountAmount))
	t.TaxAmount = t.TaxBase.Mul(taxPct).Div(hundred)
	t.GrossTotal = t.TaxBase.Add(t.TaxAmount)

	t.UsablePoints = UsablePoints(c.RedeemPoints, c.AvailablePoints, t.GrossTotal)
	t.Total = decimal.Max(decimal.Zero, t.GrossTotal.Sub(decimal.NewFromInt(int64(t.UsablePoints))))
	t.EarnedPoints = EarnedPoints(c.Lines, t.Total)
	return t
}

// UsablePoints clamps a redemption request to
// [0, min(available, floor(grossTotal))].
func UsablePoints(requested, available int, grossTotal decimal.Decimal) int {
	limit := redeemCap(available, grossTotal)
	if requested < 0 {
		return 0
	}
	if requested > limit {
		return limit
	}
	return requested
}

func redeemCap(available int, grossTotal decimal.Decimal) int {
	if available < 0 {
		available = 0
	}
	whole := grossTotal.Floor()
	if whole.IsNegative() {
		return 0
	}
	if whole.LessThan(decimal.NewFromInt(int64(available))) {
		return int(whole.IntPart())
	}
	return available
}

// EarnedPoints sums product points rates times quantity. When no counted line
// carries a rate the flat rule floor(total / 10) applies.
func EarnedPoints(lines []Line, total decimal.Decimal) int {
	earned := 0
	rated := false
	for _, l := range lines {
		if !l.counts() || l.PointsPerUnit <= 0 {
			continue
		}
		rated = true
		earned += l.PointsPerUnit * l.Quantity
	}
	if rated {
		return earned
	}
	return FlatPoints(total)
}

// FlatPoints is the blanket accrual of one point per ten currency units.
func FlatPoints(total decimal.Decimal) int {
	if !total.IsPositive() {
		return 0
	}
	return int(total.Div(ten).Floor().IntPart())
}
