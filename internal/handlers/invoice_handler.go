package handlers

import (
	"net/http"
	"strconv"

	"go-pos-retail/internal/services"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	Invoices *services.InvoiceService
}

// --- POST: /api/invoices/preview ---
// Live cart calculation. Nothing is written.
func (h *InvoiceHandler) Preview(c *gin.Context) {
	var req services.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	preview, err := h.Invoices.Preview(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "failed to price cart")
		return
	}
	c.JSON(http.StatusOK, preview)
}

// --- POST: /api/invoices ---
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req services.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	// Staff comes from the token, never the body
	req.StaffID, _ = currentUser(c)

	inv, err := h.Invoices.Commit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "failed to save invoice")
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// --- GET: /api/invoices?from=&to= ---
func (h *InvoiceHandler) List(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	invoices, err := h.Invoices.List(c.Request.Context(), from, to, limit)
	if err != nil {
		respondError(c, err, "Failed to fetch invoices")
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// --- GET: /api/invoices/:id ---
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	inv, err := h.Invoices.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Invoice not available")
		return
	}
	c.JSON(http.StatusOK, inv)
}

// --- GET: /api/customers/:id/last-price/:productId ---
func (h *InvoiceHandler) LastPrice(c *gin.Context) {
	customerID, ok := parseID(c, "id")
	if !ok {
		return
	}
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}
	price, err := h.Invoices.LastPrice(c.Request.Context(), customerID, productID)
	if err != nil {
		respondError(c, err, "Failed to fetch last price")
		return
	}
	if !price.Valid {
		c.JSON(http.StatusOK, gin.H{"customer_id": customerID, "product_id": productID, "found": false, "unit_price": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer_id": customerID, "product_id": productID, "found": true, "unit_price": price.Decimal})
}
