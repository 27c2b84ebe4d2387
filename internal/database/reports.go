package database

import (
	"context"
	"time"

	"go-pos-retail/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesReportResult holds the period aggregates over completed invoices
type SalesReportResult struct {
	TotalRevenue  decimal.Decimal
	TotalTax      decimal.Decimal
	TotalDiscount decimal.Decimal
	TotalCount    int64
}

// TopSeller is one product row of the best sellers table
type TopSeller struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Sold        int64           `json:"sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// SoldLine is the frozen economics of one sold line
type SoldLine struct {
	LineTotal decimal.Decimal
	CostPrice decimal.Decimal
	Quantity  int
}

// completedBetween scopes a query to completed invoices created in [start, end).
// created_at is the only time-partition key for reports.
func completedBetween(start, end time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("invoices.status = ? AND invoices.created_at >= ? AND invoices.created_at < ?",
			models.InvoiceCompleted, start, end)
	}
}

// GetSalesReport calculates sales within a specific date range
func GetSalesReport(ctx context.Context, db *gorm.DB, start, end time.Time) (*SalesReportResult, error) {
	var result SalesReportResult

	// COALESCE ensures we get 0 instead of NULL if no sales exist
	err := db.WithContext(ctx).Model(&models.Invoice{}).
		Scopes(completedBetween(start, end)).
		Select("COALESCE(SUM(invoices.total), 0) AS total_revenue, " +
			"COALESCE(SUM(invoices.tax_amount), 0) AS total_tax, " +
			"COALESCE(SUM(invoices.discount_amount), 0) AS total_discount, " +
			"COUNT(*) AS total_count").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTopSellers ranks products by units sold in the range
func GetTopSellers(ctx context.Context, db *gorm.DB, start, end time.Time, limit int) ([]TopSeller, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []TopSeller
	err := db.WithContext(ctx).Table("invoice_items").
		Select("invoice_items.product_id, invoice_items.product_name, " +
			"SUM(invoice_items.quantity) AS sold, SUM(invoice_items.line_total) AS revenue").
		Joins("JOIN invoices ON invoices.id = invoice_items.invoice_id").
		Scopes(completedBetween(start, end)).
		Group("invoice_items.product_id, invoice_items.product_name").
		Order("sold desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// GetSoldLines returns every sold line in the range with its frozen cost snapshot
func GetSoldLines(ctx context.Context, db *gorm.DB, start, end time.Time) ([]SoldLine, error) {
	var rows []SoldLine
	err := db.WithContext(ctx).Table("invoice_items").
		Select("invoice_items.line_total, invoice_items.cost_price, invoice_items.quantity").
		Joins("JOIN invoices ON invoices.id = invoice_items.invoice_id").
		Scopes(completedBetween(start, end)).
		Scan(&rows).Error
	return rows, err
}
