package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-pos-retail/internal/models"
	"go-pos-retail/internal/services"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	modelName     = "gemini-2.0-flash-001"
	maxToolRounds = 4
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("assistant is not configured")

// InventorySource lists catalog products.
type InventorySource interface {
	List(ctx context.Context, query string) ([]models.Product, error)
}

// ReportSource serves the read-only reports the assistant may quote.
type ReportSource interface {
	Sales(ctx context.Context, from, to time.Time) (*services.SalesReport, error)
	LowStock(ctx context.Context) ([]services.LowStockItem, error)
}

// Agent answers staff questions about stock and sales. Its tools only read.
type Agent struct {
	apiKey    string
	inventory InventorySource
	reports   ReportSource
	log       *zap.Logger
	now       func() time.Time
}

func NewAgent(apiKey string, inventory InventorySource, reports ReportSource, log *zap.Logger) *Agent {
	return &Agent{
		apiKey:    strings.TrimSpace(apiKey),
		inventory: inventory,
		reports:   reports,
		log:       log.Named("ai.agent"),
		now:       time.Now,
	}
}

// Enabled reports whether an API key is set.
func (a *Agent) Enabled() bool { return a.apiKey != "" }

// Ask runs one conversation turn, answering tool calls until the model replies with text.
func (a *Agent) Ask(ctx context.Context, userMessage string) (string, error) {
	if !a.Enabled() {
		return "", ErrDisabled
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(modelName)
	model.Tools = []*genai.Tool{{FunctionDeclarations: toolDeclarations()}}
	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(a.prompt(userMessage)))
	if err != nil {
		return "", err
	}

	// --- HANDLE TOOL CALLS ---
	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return textOf(resp), nil
		}
		parts := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			parts = append(parts, genai.FunctionResponse{Name: call.Name, Response: a.Dispatch(ctx, call)})
		}
		resp, err = session.SendMessage(ctx, parts...)
		if err != nil {
			return "", err
		}
	}
	return textOf(resp), nil
}

func (a *Agent) prompt(userMessage string) string {
	today := a.now().UTC().Format("2006-01-02")
	return fmt.Sprintf(`SYSTEM: Today is %s. You are a read-only POS assistant.

	RULES:
	1. STOCK: For price, cost, stock or details of a product, call 'check_inventory'
	   (pass a name or SKU as 'query' when the user names one) and read the JSON.
	2. SALES: For revenue, profit or best sellers, call 'get_sales_report'.
	3. REORDER: For what is running low or out of stock, call 'get_low_stock'.
	4. You cannot change prices, stock or invoices. Say so if asked.

	USER: %s`, today, userMessage)
}

// Dispatch executes one tool call and returns its JSON-encoded result.
func (a *Agent) Dispatch(ctx context.Context, call genai.FunctionCall) map[string]any {
	var (
		result any
		err    error
	)
	switch call.Name {
	case "check_inventory":
		result, err = a.checkInventory(ctx, stringArg(call.Args, "query"))
	case "get_sales_report":
		result, err = a.salesReport(ctx, stringArg(call.Args, "start_date"), stringArg(call.Args, "end_date"))
	case "get_low_stock":
		result, err = a.reports.LowStock(ctx)
	default:
		err = fmt.Errorf("unknown tool %q", call.Name)
	}
	if err != nil {
		a.log.Warn("assistant tool failed", zap.String("tool", call.Name), zap.Error(err))
		return map[string]any{"error": err.Error()}
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return map[string]any{"result": string(payload)}
}

type inventoryRow struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Category string `json:"category"`
	Stock    int    `json:"stock"`
	MinStock int    `json:"min_stock"`
	Retail   string `json:"retail_price"`
	Cost     string `json:"cost_price"`
}

func (a *Agent) checkInventory(ctx context.Context, query string) ([]inventoryRow, error) {
	products, err := a.inventory.List(ctx, query)
	if err != nil {
		return nil, err
	}
	rows := make([]inventoryRow, 0, len(products))
	for _, p := range products {
		retail := ""
		if p.RetailPrice.Valid {
			retail = p.RetailPrice.Decimal.StringFixed(2)
		}
		rows = append(rows, inventoryRow{
			ID:       p.ID,
			Name:     p.Name,
			SKU:      p.SKU,
			Category: p.Category,
			Stock:    p.CurrentStock,
			MinStock: p.MinStock,
			Retail:   retail,
			Cost:     p.CostPrice.StringFixed(2),
		})
	}
	return rows, nil
}

func (a *Agent) salesReport(ctx context.Context, startStr, endStr string) (*services.SalesReport, error) {
	start, err1 := time.Parse("2006-01-02", startStr)
	end, err2 := time.Parse("2006-01-02", endStr)
	if err1 != nil || err2 != nil {
		return nil, errors.New("dates must be in YYYY-MM-DD format")
	}
	// end date is inclusive
	return a.reports.Sales(ctx, start, end.AddDate(0, 0, 1))
}

func toolDeclarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        "check_inventory",
			Description: "List products with ID, name, SKU, category, stock, minimum stock, retail price and cost.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {Type: genai.TypeString, Description: "Optional name, SKU or barcode to filter by"},
				},
			},
		},
		{
			Name:        "get_sales_report",
			Description: "Get revenue, tax, discount, profit, invoice count and best sellers for a date range.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
					"end_date":   {Type: genai.TypeString, Description: "End date inclusive (YYYY-MM-DD)"},
				},
				Required: []string{"start_date", "end_date"},
			},
		},
		{
			Name:        "get_low_stock",
			Description: "List products at or below their minimum stock, including out of stock items.",
		},
	}
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	var calls []genai.FunctionCall
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

func textOf(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "I could not produce an answer."
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
