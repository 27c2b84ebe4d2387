package handlers

import (
	"net/http"

	"go-pos-retail/internal/services"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	Reports *services.ReportService
}

// --- GET: /api/reports/sales?from=&to= ---
func (h *ReportHandler) Sales(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	report, err := h.Reports.Sales(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err, "Failed to calculate sales")
		return
	}
	c.JSON(http.StatusOK, report)
}

// --- GET: /api/reports/low-stock ---
func (h *ReportHandler) LowStock(c *gin.Context) {
	items, err := h.Reports.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch low stock")
		return
	}
	c.JSON(http.StatusOK, items)
}

// --- GET: /api/reports/valuation ---
// Total monetary value of physical inventory at cost, grouped by category
func (h *ReportHandler) Valuation(c *gin.Context) {
	valuation, err := h.Reports.Valuation(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch inventory")
		return
	}
	c.JSON(http.StatusOK, valuation)
}
