package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go-pos-retail/internal/database"
	"go-pos-retail/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Low stock statuses
const (
	StockLow        = "low"
	StockOutOfStock = "out_of_stock"
)

// SalesReport summarizes completed invoices created in [From, To).
type SalesReport struct {
	From           time.Time              `json:"from"`
	To             time.Time              `json:"to"`
	TotalRevenue   decimal.Decimal        `json:"total_revenue"`
	TotalTax       decimal.Decimal        `json:"total_tax"`
	TotalDiscount  decimal.Decimal        `json:"total_discount"`
	InvoiceCount   int64                  `json:"invoice_count"`
	Profit         decimal.Decimal        `json:"profit"`
	TopSelling     []database.TopSeller   `json:"top_selling"`
	RecentInvoices []models.Invoice       `json:"recent_invoices"`
}

// LowStockItem is a product at or below its reorder threshold.
type LowStockItem struct {
	ProductID    uint   `json:"product_id"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	Category     string `json:"category"`
	CurrentStock int    `json:"current_stock"`
	MinStock     int    `json:"min_stock"`
	Available    int    `json:"available"`
	Status       string `json:"status"`
}

// ValuationItem is one product row of the stock valuation.
type ValuationItem struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	CostPrice decimal.Decimal `json:"cost_price"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// CategoryGroup is one category table of the valuation.
type CategoryGroup struct {
	CategoryName string          `json:"category_name"`
	Items        []ValuationItem `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// Valuation is the monetary value of physical inventory at cost.
type Valuation struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

type ReportService struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewReportService(db *gorm.DB, log *zap.Logger) *ReportService {
	return &ReportService{db: db, log: log.Named("report.service"), now: time.Now}
}

// Sales aggregates completed invoices by created_at. A zero range defaults
// to the last 30 days.
func (s *ReportService) Sales(ctx context.Context, from, to time.Time) (*SalesReport, error) {
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	from, to = from.UTC(), to.UTC()
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: from must be before to", ErrValidation)
	}

	// 1. Headline totals
	totals, err := database.GetSalesReport(ctx, s.db, from, to)
	if err != nil {
		return nil, err
	}
	report := &SalesReport{
		From:          from,
		To:            to,
		TotalRevenue:  totals.TotalRevenue.Round(2),
		TotalTax:      totals.TotalTax.Round(2),
		TotalDiscount: totals.TotalDiscount.Round(2),
		InvoiceCount:  totals.TotalCount,
	}

	// 2. Profit from the frozen cost snapshot on each line
	lines, err := database.GetSoldLines(ctx, s.db, from, to)
	if err != nil {
		return nil, err
	}
	profit := decimal.Zero
	for _, l := range lines {
		profit = profit.Add(l.LineTotal.Sub(l.CostPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))))
	}
	report.Profit = profit.Round(2)

	// 3. Best sellers
	report.TopSelling, err = database.GetTopSellers(ctx, s.db, from, to, 5)
	if err != nil {
		return nil, err
	}

	// 4. Recent transactions
	err = s.db.WithContext(ctx).
		Where("status = ? AND created_at >= ? AND created_at < ?", models.InvoiceCompleted, from, to).
		Order("created_at desc").Order("id desc").Limit(10).
		Find(&report.RecentInvoices).Error
	if err != nil {
		return nil, err
	}
	return report, nil
}

// LowStock lists products at or below their minimum stock. Negative stock
// is reported as out of stock with nothing available.
func (s *ReportService) LowStock(ctx context.Context) ([]LowStockItem, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("current_stock <= min_stock").
		Order("current_stock asc").Order("name asc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	out := make([]LowStockItem, 0, len(products))
	for _, p := range products {
		item := LowStockItem{
			ProductID:    p.ID,
			Name:         p.Name,
			SKU:          p.SKU,
			Category:     p.Category,
			CurrentStock: p.CurrentStock,
			MinStock:     p.MinStock,
			Available:    p.CurrentStock,
			Status:       StockLow,
		}
		if p.CurrentStock <= 0 {
			item.Available = 0
			item.Status = StockOutOfStock
		}
		out = append(out, item)
	}
	return out, nil
}

// Valuation groups stock at cost by category. Negative stock counts as zero.
func (s *ReportService) Valuation(ctx context.Context) (*Valuation, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("name asc").Find(&products).Error; err != nil {
		return nil, err
	}

	grandTotal := decimal.Zero
	grouped := make(map[string]*CategoryGroup)
	for _, p := range products {
		catName := p.Category
		if catName == "" {
			catName = "Uncategorized"
		}
		group, ok := grouped[catName]
		if !ok {
			group = &CategoryGroup{CategoryName: catName, Items: []ValuationItem{}, Subtotal: decimal.Zero}
			grouped[catName] = group
		}

		qty := p.CurrentStock
		if qty < 0 {
			qty = 0
		}
		itemTotal := p.CostPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2)
		group.Items = append(group.Items, ValuationItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  qty,
			CostPrice: p.CostPrice,
			TotalCost: itemTotal,
		})
		group.Subtotal = group.Subtotal.Add(itemTotal)
		grandTotal = grandTotal.Add(itemTotal)
	}

	out := &Valuation{Categories: make([]CategoryGroup, 0, len(grouped)), GrandTotal: grandTotal}
	for _, g := range grouped {
		out.Categories = append(out.Categories, *g)
	}
	sort.Slice(out.Categories, func(i, j int) bool {
		return out.Categories[i].CategoryName < out.Categories[j].CategoryName
	})
	return out, nil
}
