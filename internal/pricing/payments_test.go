package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_PartialPaymentAllowed(t *testing.T) {
	r := Reconcile([]Payment{{Method: "Cash", Amount: d("40")}}, d("64.5"), d("94.5"), 0, CapPerRow)

	assert.True(t, r.TotalPayments.Equal(d("40")))
	assert.True(t, r.Balance.Equal(d("24.5")))
	assert.True(t, r.Change.IsZero())
}

func TestReconcile_Change(t *testing.T) {
	r := Reconcile([]Payment{
		{Method: "cash", Amount: d("50")},
		{Method: "Card", Amount: d("20")},
	}, d("64.5"), d("64.5"), 0, CapPerRow)

	assert.True(t, r.TotalPayments.Equal(d("70")))
	assert.True(t, r.Balance.IsZero())
	assert.True(t, r.Change.Equal(d("5.5")))
}

func TestReconcile_NegativeAmountsIgnored(t *testing.T) {
	r := Reconcile([]Payment{{Method: "Cash", Amount: d("-10")}}, d("5"), d("5"), 0, CapPerRow)
	assert.True(t, r.TotalPayments.IsZero())
	assert.True(t, r.Balance.Equal(d("5")))
}

func TestCapPoints(t *testing.T) {
	assert.Equal(t, 30, CapPoints(d("50"), d("94.5"), 30))
	assert.Equal(t, 94, CapPoints(d("500"), d("94.5"), 300))
	assert.Equal(t, 12, CapPoints(d("12.9"), d("94.5"), 300))
	assert.Equal(t, 0, CapPoints(d("-1"), d("94.5"), 300))
	assert.Equal(t, 0, CapPoints(d("5"), d("94.5"), 0))
}

// Each Points row is capped on its own, so two rows may exceed the balance.
func TestReconcile_PointsPerRowCap(t *testing.T) {
	payments := []Payment{
		{Method: "Points", Amount: d("30")},
		{Method: "Points", Amount: d("30")},
	}
	r := Reconcile(payments, d("100"), d("100"), 40, CapPerRow)

	assert.Equal(t, 60, r.PointsPaid)
	assert.True(t, r.Payments[0].Amount.Equal(d("30")))
	assert.True(t, r.Payments[1].Amount.Equal(d("30")))
	assert.True(t, r.Balance.Equal(d("40")))
}

// Points rows draw on one shared budget.
func TestReconcile_PointsSharedCap(t *testing.T) {
	payments := []Payment{
		{Method: "Points", Amount: d("30")},
		{Method: "points", Amount: d("30")},
		{Method: "Cash", Amount: d("10")},
	}
	r := Reconcile(payments, d("100"), d("100"), 40, CapShared)

	assert.Equal(t, 40, r.PointsPaid)
	assert.True(t, r.Payments[0].Amount.Equal(d("30")))
	assert.True(t, r.Payments[1].Amount.Equal(d("10")))
	assert.Equal(t, "Points", r.Payments[1].Method)
	assert.True(t, r.TotalPayments.Equal(d("50")))
}

func TestReconcile_SharedCapBoundedByGrossTotal(t *testing.T) {
	payments := []Payment{
		{Method: "Points", Amount: d("8")},
		{Method: "Points", Amount: d("8")},
	}
	r := Reconcile(payments, d("10.5"), d("10.5"), 1000, CapShared)
	assert.Equal(t, 10, r.PointsPaid)
}

func TestParsePointsCapMode(t *testing.T) {
	assert.Equal(t, CapShared, ParsePointsCapMode(" Shared "))
	assert.Equal(t, CapPerRow, ParsePointsCapMode("per_row"))
	assert.Equal(t, CapPerRow, ParsePointsCapMode("bogus"))
}

func TestNormalizeMethod(t *testing.T) {
	m, ok := NormalizeMethod(" MOBILE ")
	assert.True(t, ok)
	assert.Equal(t, "Mobile", m)

	_, ok = NormalizeMethod("crypto")
	assert.False(t, ok)
}

func TestSharedBudget_TakesCartRedemptionFromCap(t *testing.T) {
	tot := Compute(Cart{
		Lines:           []Line{{ProductID: 1, Quantity: 1, UnitPrice: d("100")}},
		RedeemPoints:    90,
		AvailablePoints: 500,
	})
	require.Equal(t, 90, tot.UsablePoints)
	assert.Equal(t, 10, SharedBudget(500, tot))
	assert.Equal(t, 0, SharedBudget(90, tot))
	assert.Equal(t, 0, SharedBudget(0, tot))
}

// Points rows cover at most what is still due; only cash makes change.
func TestReconcile_SharedPointsNeverMakeChange(t *testing.T) {
	payments := []Payment{
		{Method: "Cash", Amount: d("15")},
		{Method: "Points", Amount: d("20")},
	}
	r := Reconcile(payments, d("20"), d("20"), 50, CapShared)

	assert.Equal(t, 5, r.PointsPaid)
	assert.True(t, r.TotalPayments.Equal(d("20")))
	assert.True(t, r.Change.IsZero())

	cashLast := []Payment{
		{Method: "Points", Amount: d("20")},
		{Method: "Cash", Amount: d("5")},
	}
	r = Reconcile(cashLast, d("20"), d("20"), 50, CapShared)
	assert.Equal(t, 20, r.PointsPaid)
	assert.True(t, r.Change.Equal(d("5")))
}
