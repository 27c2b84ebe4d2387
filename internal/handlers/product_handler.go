package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go-pos-retail/internal/models"
	"go-pos-retail/internal/services"

	"github.com/gin-gonic/gin"
)

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

type ProductHandler struct {
	Catalog   *services.CatalogService
	UploadDir string
	BaseURL   string
}

// --- GET: List all products (?q= filters) ---
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.Catalog.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err, "Failed to fetch products")
		return
	}
	c.JSON(http.StatusOK, products)
}

// --- GET: /api/products/search?q= ---
func (h *ProductHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		badRequest(c, "q is required")
		return
	}
	h.List(c)
}

// --- GET: /api/products/scan/:barcode ---
func (h *ProductHandler) Scan(c *gin.Context) {
	product, err := h.Catalog.GetByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		respondError(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, product)
}

// --- GET: /api/products/:id ---
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	product, err := h.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, product)
}

// --- POST: Add a new product ---
func (h *ProductHandler) Create(c *gin.Context) {
	var newProduct models.Product

	// 1. Parse JSON Input
	if err := c.ShouldBindJSON(&newProduct); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	// 2. Save to DB
	userID, _ := currentUser(c)
	product, err := h.Catalog.Create(c.Request.Context(), newProduct, userID)
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// --- PATCH: Update catalog fields ---
// Stock is not accepted here; it moves through invoices and adjustments only.
func (h *ProductHandler) Update(c *gin.Context) {
	// 1. Get ID from URL (e.g., /products/5)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	// 2. Bind only the fields that were sent (partial update)
	var patch services.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	// 3. Save updates
	product, err := h.Catalog.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err, "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
}

// --- DELETE: Remove a product ---
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	// Refused while any invoice line references it
	if err := h.Catalog.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Could not delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// --- UPLOAD: /api/products/:id/image ---
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	// 1. Get the file from the request
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "No file uploaded")
		return
	}

	// 2. Only allow images
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		badRequest(c, "Only jpg, png, webp or gif images are accepted")
		return
	}

	// 3. Generate a safe unique filename, e.g. "12_167890123.jpg"
	filename := fmt.Sprintf("%d_%d%s", id, time.Now().UnixNano(), ext)

	// 4. Save the file to the uploads folder
	if err := c.SaveUploadedFile(file, filepath.Join(h.UploadDir, filename)); err != nil {
		respondError(c, err, "Failed to save file")
		return
	}

	// 5. Point the product at it
	url := strings.TrimRight(h.BaseURL, "/") + "/uploads/" + filename
	product, err := h.Catalog.SetImage(c.Request.Context(), id, url)
	if err != nil {
		respondError(c, err, "Failed to attach image")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "File uploaded successfully",
		"url":     url,
		"product": product,
	})
}
