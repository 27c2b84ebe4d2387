package pricing

import (
	"testing"

	"go-pos-retail/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nd(s string) decimal.NullDecimal { return decimal.NewNullDecimal(d(s)) }

func TestTierPrice(t *testing.T) {
	p := models.Product{RetailPrice: nd("10"), WholesalePrice: nd("8"), VIPPrice: nd("9")}

	assert.True(t, TierPrice(p, "Wholesale").Equal(d("8")))
	assert.True(t, TierPrice(p, "WHOLESALE").Equal(d("8")))
	assert.True(t, TierPrice(p, "vip").Equal(d("9")))
	assert.True(t, TierPrice(p, "Member").Equal(d("10")))
	assert.True(t, TierPrice(p, "").Equal(d("10")))

	// missing tier prices fall back silently
	retailOnly := models.Product{RetailPrice: nd("10")}
	assert.True(t, TierPrice(retailOnly, "Wholesale").Equal(d("10")))
	assert.True(t, TierPrice(retailOnly, "VIP").Equal(d("10")))

	assert.True(t, TierPrice(models.Product{}, "Retail").IsZero())
	assert.True(t, TierPrice(models.Product{WholesalePrice: nd("8")}, "Retail").IsZero())
}

func TestResolveUnitPrice_LastPurchaseWins(t *testing.T) {
	p := models.Product{RetailPrice: nd("10"), WholesalePrice: nd("8")}

	assert.True(t, ResolveUnitPrice(p, "Wholesale", nd("7.25")).Equal(d("7.25")))
	assert.True(t, ResolveUnitPrice(p, "Wholesale", decimal.NullDecimal{}).Equal(d("8")))
	assert.True(t, ResolveUnitPrice(models.Product{}, "Retail", decimal.NullDecimal{}).IsZero())
}

func TestCustomerType(t *testing.T) {
	assert.Equal(t, models.CustomerRetail, CustomerType(nil))
	assert.Equal(t, models.CustomerRetail, CustomerType(&models.Customer{}))
	assert.Equal(t, "VIP", CustomerType(&models.Customer{Type: "VIP"}))
}

// Scenario A
func TestLine_WholesaleScenario(t *testing.T) {
	p := models.Product{RetailPrice: nd("10"), WholesalePrice: nd("8")}
	l := Line{ProductID: 1, Quantity: 3, UnitPrice: TierPrice(p, "Wholesale")}

	assert.True(t, l.EffectiveUnit().Equal(d("8")))
	assert.True(t, l.Total().Equal(d("24")))
}

func TestLine_DiscountClamped(t *testing.T) {
	l := Line{ProductID: 1, Quantity: 2, UnitPrice: d("50"), DiscountPct: d("10")}
	assert.True(t, l.EffectiveUnit().Equal(d("45")))
	assert.True(t, l.Total().Equal(d("90")))

	l.DiscountPct = d("150")
	assert.True(t, l.EffectiveUnit().IsZero())

	l.DiscountPct = d("-5")
	assert.True(t, l.EffectiveUnit().Equal(d("50")))
}

func TestClampQuantity(t *testing.T) {
	assert.Equal(t, 1, ClampQuantity(0, 10))
	assert.Equal(t, 1, ClampQuantity(-3, 10))
	assert.Equal(t, 5, ClampQuantity(5, 10))
	assert.Equal(t, 10, ClampQuantity(25, 10))
	// zero or negative stock keeps only the floor
	assert.Equal(t, 1, ClampQuantity(4, 0))
	assert.Equal(t, 1, ClampQuantity(4, -2))
}

// Scenario B
func TestCompute_DiscountTaxRedemption(t *testing.T) {
	c := Cart{
		Lines:           []Line{{ProductID: 1, Quantity: 1, UnitPrice: d("100")}},
		DiscountPct:     d("10"),
		TaxPct:          d("5"),
		RedeemPoints:    50,
		AvailablePoints: 30,
	}
	tot := Compute(c)

	assert.True(t, tot.Subtotal.Equal(d("100")))
	assert.True(t, tot.DiscountAmount.Equal(d("10")))
	assert.True(t, tot.TaxBase.Equal(d("90")))
	assert.True(t, tot.TaxAmount.Equal(d("4.5")))
	assert.True(t, tot.GrossTotal.Equal(d("94.5")))
	assert.Equal(t, 30, tot.UsablePoints)
	assert.True(t, tot.Total.Equal(d("64.5")), tot.Total.String())
}

func TestCompute_SkipsRowsWithoutProduct(t *testing.T) {
	c := Cart{Lines: []Line{
		{ProductID: 0, Quantity: 4, UnitPrice: d("99")},
		{ProductID: 2, Quantity: 0, UnitPrice: d("99")},
		{ProductID: 3, Quantity: 2, UnitPrice: d("5")},
	}}
	tot := Compute(c)
	assert.True(t, tot.Subtotal.Equal(d("10")))
	assert.True(t, tot.Total.Equal(d("10")))
}

func TestCompute_RedemptionBoundedByGrossTotal(t *testing.T) {
	c := Cart{
		Lines:           []Line{{ProductID: 1, Quantity: 1, UnitPrice: d("12.75")}},
		RedeemPoints:    500,
		AvailablePoints: 1000,
	}
	tot := Compute(c)
	assert.Equal(t, 12, tot.UsablePoints)
	assert.True(t, tot.Total.Equal(d("0.75")))
}

// Scenario E
func TestEarnedPoints_FlatFallback(t *testing.T) {
	c := Cart{Lines: []Line{{ProductID: 1, Quantity: 1, UnitPrice: d("47")}}}
	tot := Compute(c)
	assert.True(t, tot.Total.Equal(d("47")))
	assert.Equal(t, 4, tot.EarnedPoints)
}

func TestEarnedPoints_PerProductRate(t *testing.T) {
	lines := []Line{
		{ProductID: 1, Quantity: 3, UnitPrice: d("20"), PointsPerUnit: 2},
		{ProductID: 2, Quantity: 1, UnitPrice: d("500")},
	}
	assert.Equal(t, 6, EarnedPoints(lines, d("560")))
	assert.Equal(t, 0, FlatPoints(d("-3")))
	assert.Equal(t, 0, FlatPoints(d("9.99")))
}

func TestCompute_TotalNeverNegative(t *testing.T) {
	pcts := []string{"-20", "0", "12.5", "100", "250"}
	for _, disc := range pcts {
		for _, tax := range pcts {
			for _, qty := range []int{1, 3, 40} {
				for _, redeem := range []int{-10, 0, 5, 100000} {
					c := Cart{
						Lines: []Line{
							{ProductID: 1, Quantity: qty, UnitPrice: d("19.99"), DiscountPct: d(disc)},
							{ProductID: 2, Quantity: qty, UnitPrice: d("0.5")},
						},
						DiscountPct:     d(disc),
						TaxPct:          d(tax),
						RedeemPoints:    redeem,
						AvailablePoints: 75,
					}
					tot := Compute(c)
					require.False(t, tot.Total.IsNegative(), "disc=%s tax=%s qty=%d redeem=%d", disc, tax, qty, redeem)

					limit := tot.GrossTotal.Floor().IntPart()
					if limit > 75 {
						limit = 75
					}
					require.LessOrEqual(t, int64(tot.UsablePoints), limit)
					require.GreaterOrEqual(t, tot.UsablePoints, 0)
				}
			}
		}
	}
}

func TestUsablePoints_BoundaryEquality(t *testing.T) {
	assert.Equal(t, 30, UsablePoints(30, 30, d("94.5")))
	assert.Equal(t, 94, UsablePoints(94, 200, d("94.5")))
	assert.Equal(t, 94, UsablePoints(95, 200, d("94.5")))
	assert.Equal(t, 0, UsablePoints(10, -5, d("94.5")))
}

func TestCompute_Idempotent(t *testing.T) {
	c := Cart{
		Lines: []Line{
			{ProductID: 1, Quantity: 2, UnitPrice: d("3.33"), DiscountPct: d("7"), PointsPerUnit: 1},
			{ProductID: 2, Quantity: 5, UnitPrice: d("1.10")},
		},
		DiscountPct:     d("3"),
		TaxPct:          d("8.25"),
		RedeemPoints:    2,
		AvailablePoints: 10,
	}
	a, b := Compute(c), Compute(c)
	assert.True(t, a.Subtotal.Equal(b.Subtotal))
	assert.True(t, a.Total.Equal(b.Total))
	assert.Equal(t, a.EarnedPoints, b.EarnedPoints)
}

// Stored line totals are rounded, so the subtotal sums the rounded amounts.
func TestCompute_SubtotalSumsRoundedLines(t *testing.T) {
	lines := []Line{
		{ProductID: 1, Quantity: 1, UnitPrice: d("1.005")},
		{ProductID: 2, Quantity: 1, UnitPrice: d("1.005")},
	}
	tot := Compute(Cart{Lines: lines})

	sum := lines[0].Amount().Add(lines[1].Amount())
	assert.Equal(t, "2.02", sum.StringFixed(2))
	assert.True(t, tot.Subtotal.Equal(sum), tot.Subtotal.String())
}
