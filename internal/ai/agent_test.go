package ai

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-pos-retail/internal/models"
	"go-pos-retail/internal/services"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeInventory struct {
	lastQuery string
	products  []models.Product
}

func (f *fakeInventory) List(_ context.Context, query string) ([]models.Product, error) {
	f.lastQuery = query
	return f.products, nil
}

type fakeReports struct {
	from, to time.Time
	lowErr   error
}

func (f *fakeReports) Sales(_ context.Context, from, to time.Time) (*services.SalesReport, error) {
	f.from, f.to = from, to
	return &services.SalesReport{TotalRevenue: decimal.RequireFromString("120.50"), InvoiceCount: 3}, nil
}

func (f *fakeReports) LowStock(context.Context) ([]services.LowStockItem, error) {
	if f.lowErr != nil {
		return nil, f.lowErr
	}
	return []services.LowStockItem{{Name: "Milk", Status: services.StockOutOfStock}}, nil
}

func TestDispatch_CheckInventory(t *testing.T) {
	inv := &fakeInventory{products: []models.Product{{
		ID: 4, Name: "Rice", SKU: "R1", CurrentStock: -2,
		RetailPrice: decimal.NewNullDecimal(decimal.RequireFromString("3.5")),
		CostPrice:   decimal.RequireFromString("2"),
	}}}
	agent := NewAgent("", inv, &fakeReports{}, zap.NewNop())

	out := agent.Dispatch(context.Background(), genai.FunctionCall{Name: "check_inventory", Args: map[string]any{"query": " rice "}})
	require.Contains(t, out, "result")
	assert.Equal(t, "rice", inv.lastQuery)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out["result"].(string)), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "3.50", rows[0]["retail_price"])
	assert.Equal(t, float64(-2), rows[0]["stock"])
}

func TestDispatch_SalesReportEndDateInclusive(t *testing.T) {
	reports := &fakeReports{}
	agent := NewAgent("", &fakeInventory{}, reports, zap.NewNop())

	out := agent.Dispatch(context.Background(), genai.FunctionCall{
		Name: "get_sales_report",
		Args: map[string]any{"start_date": "2026-10-01", "end_date": "2026-10-15"},
	})
	require.Contains(t, out, "result")
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), reports.from)
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), reports.to)

	bad := agent.Dispatch(context.Background(), genai.FunctionCall{
		Name: "get_sales_report",
		Args: map[string]any{"start_date": "yesterday", "end_date": "today"},
	})
	assert.Contains(t, bad, "error")
}

func TestDispatch_LowStockAndErrors(t *testing.T) {
	agent := NewAgent("", &fakeInventory{}, &fakeReports{}, zap.NewNop())
	out := agent.Dispatch(context.Background(), genai.FunctionCall{Name: "get_low_stock"})
	require.Contains(t, out, "result")
	assert.Contains(t, out["result"], "out_of_stock")

	failing := NewAgent("", &fakeInventory{}, &fakeReports{lowErr: errors.New("db down")}, zap.NewNop())
	out = failing.Dispatch(context.Background(), genai.FunctionCall{Name: "get_low_stock"})
	assert.Equal(t, "db down", out["error"])

	out = agent.Dispatch(context.Background(), genai.FunctionCall{Name: "update_product_price"})
	assert.Contains(t, out, "error")
}

func TestAsk_DisabledWithoutKey(t *testing.T) {
	agent := NewAgent("  ", &fakeInventory{}, &fakeReports{}, zap.NewNop())
	assert.False(t, agent.Enabled())
	_, err := agent.Ask(context.Background(), "how many sales today?")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestToolDeclarationsAreReadOnly(t *testing.T) {
	var names []string
	for _, d := range toolDeclarations() {
		names = append(names, d.Name)
	}
	assert.ElementsMatch(t, []string{"check_inventory", "get_sales_report", "get_low_stock"}, names)
}
