package handlers

import (
	"net/http"

	"go-pos-retail/internal/services"
	"go-pos-retail/internal/utils"

	"github.com/gin-gonic/gin"
)

type SystemHandler struct {
	Invoices  *services.InvoiceService
	NodeID    int64
	PointsCap string
}

// --- GET: /api/system/status ---
// Tells the admin screen which register this is and how commits behave.
func (h *SystemHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"device_id":       utils.DeviceID(),
		"snowflake_node":  h.NodeID,
		"commit_mode":     h.Invoices.Mode(),
		"points_cap_mode": h.PointsCap,
	})
}
