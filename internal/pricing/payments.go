package pricing

import (
	"strings"

	"go-pos-retail/internal/models"

	"github.com/shopspring/decimal"
)

// PointsCapMode decides how several Points payment rows share the redemption cap.
type PointsCapMode string

const (
	// CapPerRow clamps each Points row on its own. Two rows can together
	// exceed the balance; this is the behavior the register has today.
	CapPerRow PointsCapMode = "per_row"
	// CapShared clamps all Points rows against one running budget.
	CapShared PointsCapMode = "shared"
)

// ParsePointsCapMode falls back to CapPerRow for unknown values.
func ParsePointsCapMode(s string) PointsCapMode {
	if PointsCapMode(strings.ToLower(strings.TrimSpace(s))) == CapShared {
		return CapShared
	}
	return CapPerRow
}

var methods = map[string]string{
	"cash":   models.PaymentCash,
	"bank":   models.PaymentBank,
	"card":   models.PaymentCard,
	"mobile": models.PaymentMobile,
	"points": models.PaymentPoints,
}

// NormalizeMethod maps a method tag to its canonical spelling.
func NormalizeMethod(m string) (string, bool) {
	canon, ok := methods[strings.ToLower(strings.TrimSpace(m))]
	return canon, ok
}

// Payment is one declared payment row.
type Payment struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// Reconciliation summarizes declared payments against the invoice total.
type Reconciliation struct {
	Payments      []Payment       `json:"payments"`
	TotalPayments decimal.Decimal `json:"total_payments"`
	PointsPaid    int             `json:"points_paid"`
	Balance       decimal.Decimal `json:"balance"`
	Change        decimal.Decimal `json:"change"`
}

// CapPoints clamps one Points row to min(entered, floor(grossTotal), available),
// in whole points.
func CapPoints(entered decimal.Decimal, grossTotal decimal.Decimal, available int) int {
	if !entered.IsPositive() {
		return 0
	}
	limit := redeemCap(available, grossTotal)
	want := entered.Floor()
	if want.GreaterThan(decimal.NewFromInt(int64(limit))) {
		return limit
	}
	return int(want.IntPart())
}

// SharedBudget is what Points rows may still redeem under CapShared once the
// cart-level redemption has been taken from min(available, floor(grossTotal)).
func SharedBudget(available int, t Totals) int {
	budget := redeemCap(available, t.GrossTotal) - t.UsablePoints
	if budget < 0 {
		return 0
	}
	return budget
}

// Reconcile caps Points rows and derives paid/balance/change. Partial payment
// is allowed: the balance is informational. Under CapShared availablePoints is
// the SharedBudget and each Points row is also held to the amount still due,
// so points never turn into change.
func Reconcile(payments []Payment, total, grossTotal decimal.Decimal, availablePoints int, mode PointsCapMode) Reconciliation {
	r := Reconciliation{
		Payments:      make([]Payment, 0, len(payments)),
		TotalPayments: decimal.Zero,
	}
	budget := redeemCap(availablePoints, grossTotal)
	for _, p := range payments {
		amount := p.Amount
		if amount.IsNegative() {
			amount = decimal.Zero
		}
		if method, ok := NormalizeMethod(p.Method); ok && method == models.PaymentPoints {
			var pts int
			if mode == CapShared {
				pts = CapPoints(amount, total.Sub(r.TotalPayments), budget)
				budget -= pts
			} else {
				pts = CapPoints(amount, grossTotal, availablePoints)
			}
			r.PointsPaid += pts
			amount = decimal.NewFromInt(int64(pts))
			p.Method = method
		}
		p.Amount = amount
		r.Payments = append(r.Payments, p)
		r.TotalPayments = r.TotalPayments.Add(amount)
	}
	r.Balance = decimal.Max(decimal.Zero, total.Sub(r.TotalPayments))
	r.Change = decimal.Max(decimal.Zero, r.TotalPayments.Sub(total))
	return r
}
