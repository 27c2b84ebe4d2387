package services

import (
	"context"
	"testing"
	"time"

	"go-pos-retail/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReports_SalesProfitAndTopSellers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := seedProduct(t, db, "A", "10", 20) // cost 1
	b := seedProduct(t, db, "B", "4", 20)
	invoices := newInvoiceSvc(t, db, CommitAtomic, "", nil)

	_, err := invoices.Commit(ctx, InvoiceRequest{Items: []InvoiceItemInput{{ProductID: a.ID, Quantity: 2}, {ProductID: b.ID, Quantity: 1}}})
	require.NoError(t, err)
	_, err = invoices.Commit(ctx, InvoiceRequest{Items: []InvoiceItemInput{{ProductID: b.ID, Quantity: 5}}, TaxPct: dec("10")})
	require.NoError(t, err)
	// drafts stay out of reports
	_, err = invoices.Commit(ctx, InvoiceRequest{Status: "draft", Items: []InvoiceItemInput{{ProductID: a.ID, Quantity: 1}}})
	require.NoError(t, err)

	svc := NewReportService(db, zap.NewNop())
	report, err := svc.Sales(ctx, testEpoch.Add(-time.Hour), testEpoch.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.InvoiceCount)
	// 24 + (20 + 2 tax)
	assert.Equal(t, "46.00", report.TotalRevenue.StringFixed(2))
	assert.Equal(t, "2.00", report.TotalTax.StringFixed(2))
	// lines 20+4+20 minus cost 8 units x 1
	assert.Equal(t, "36.00", report.Profit.StringFixed(2))
	require.NotEmpty(t, report.TopSelling)
	assert.Equal(t, "B", report.TopSelling[0].ProductName)
	assert.Equal(t, int64(6), report.TopSelling[0].Sold)
	assert.Len(t, report.RecentInvoices, 2)

	_, err = svc.Sales(ctx, testEpoch, testEpoch.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReports_LowStockTreatsNegativeAsOutOfStock(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	neg := seedProduct(t, db, "Neg", "1", 2)
	low := seedProduct(t, db, "Low", "1", 3)
	seedProduct(t, db, "Plenty", "1", 50)
	require.NoError(t, db.Model(&models.Product{}).Where("id IN ?", []uint{neg.ID, low.ID}).Update("min_stock", 5).Error)

	_, err := NewInventoryService(db, zap.NewNop()).Adjust(ctx, AdjustmentRequest{ProductID: neg.ID, Type: "Stock Out", Quantity: 6})
	require.NoError(t, err)

	items, err := NewReportService(db, zap.NewNop()).LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Neg", items[0].Name)
	assert.Equal(t, -4, items[0].CurrentStock)
	assert.Equal(t, 0, items[0].Available)
	assert.Equal(t, StockOutOfStock, items[0].Status)

	assert.Equal(t, "Low", items[1].Name)
	assert.Equal(t, 3, items[1].Available)
	assert.Equal(t, StockLow, items[1].Status)
}

func TestReports_ValuationIgnoresNegativeStock(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := seedProduct(t, db, "A", "1", 4)
	b := seedProduct(t, db, "B", "1", 1)
	require.NoError(t, db.Model(&a).Updates(map[string]interface{}{"cost_price": dec("2.50"), "category": "Drinks"}).Error)
	require.NoError(t, db.Model(&b).Update("current_stock", -3).Error)

	v, err := NewReportService(db, zap.NewNop()).Valuation(ctx)
	require.NoError(t, err)
	require.Len(t, v.Categories, 2)
	assert.Equal(t, "Drinks", v.Categories[0].CategoryName)
	assert.Equal(t, "10.00", v.Categories[0].Subtotal.StringFixed(2))
	assert.Equal(t, "General", v.Categories[1].CategoryName)
	assert.Equal(t, 0, v.Categories[1].Items[0].Quantity)
	assert.Equal(t, "10.00", v.GrandTotal.StringFixed(2))
}
