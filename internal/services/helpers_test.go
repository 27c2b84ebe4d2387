package services

import (
	"sync"
	"testing"
	"time"

	"go-pos-retail/internal/database"
	"go-pos-retail/internal/models"
	"go-pos-retail/internal/pricing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testEpoch = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:", gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// tickingClock advances one minute per call so invoices get distinct created_at.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	next := testEpoch
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Minute)
		return now
	}
}

func newInvoiceSvc(t *testing.T, db *gorm.DB, mode CommitMode, capMode string, log *zap.Logger) *InvoiceService {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	if log == nil {
		log = zap.NewNop()
	}
	return NewInvoiceService(db, log, node, InvoiceOptions{
		Mode:      mode,
		PointsCap: pricing.ParsePointsCapMode(capMode),
		Now:       tickingClock(),
	})
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func price(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func uintPtr(v uint) *uint { return &v }

func seedProduct(t *testing.T, db *gorm.DB, name string, retail string, stock int) models.Product {
	t.Helper()
	p := models.Product{
		Name:         name,
		SKU:          "SKU-" + name,
		Category:     "General",
		RetailPrice:  price(retail),
		CostPrice:    dec("1"),
		CurrentStock: stock,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedCustomer(t *testing.T, db *gorm.DB, name, typ string, points int) models.Customer {
	t.Helper()
	c := models.Customer{Name: name, Phone: "555-0100", Type: typ, LoyaltyPoints: points, TotalSpent: decimal.Zero}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.CurrentStock
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
