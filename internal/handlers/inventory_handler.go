package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go-pos-retail/internal/services"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	Inventory *services.InventoryService
}

// --- POST: /api/inventory/adjustments ---
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req services.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	req.UserID, req.UserName = currentUser(c)

	row, err := h.Inventory.Adjust(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to adjust stock")
		return
	}
	c.JSON(http.StatusCreated, row)
}

// --- GET: /api/inventory/adjustments?productId= ---
func (h *InventoryHandler) List(c *gin.Context) {
	var productID uint64
	if raw := strings.TrimSpace(c.Query("productId")); raw != "" {
		var err error
		productID, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badRequest(c, "Invalid productId")
			return
		}
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	rows, err := h.Inventory.List(c.Request.Context(), uint(productID), limit)
	if err != nil {
		respondError(c, err, "Failed to fetch adjustments")
		return
	}
	c.JSON(http.StatusOK, rows)
}
