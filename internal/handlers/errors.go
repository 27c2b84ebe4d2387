package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-pos-retail/internal/middleware"
	"go-pos-retail/internal/services"

	"github.com/gin-gonic/gin"
)

// mapError turns a service error into a status and a machine-readable code.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, services.ErrInvalidAdjustment):
		return http.StatusBadRequest, "invalid_adjustment"
	case errors.Is(err, services.ErrProductNotFound):
		return http.StatusNotFound, "product_not_found"
	case errors.Is(err, services.ErrCustomerNotFound):
		return http.StatusNotFound, "customer_not_found"
	case errors.Is(err, services.ErrInvoiceNotFound):
		return http.StatusNotFound, "invoice_not_found"
	case errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found"
	case errors.Is(err, services.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, services.ErrDuplicateInvoiceNumber):
		return http.StatusConflict, "duplicate_invoice_number"
	case errors.Is(err, services.ErrDuplicate):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, services.ErrProductInUse):
		return http.StatusConflict, "product_in_use"
	case errors.Is(err, services.ErrCustomerInUse):
		return http.StatusConflict, "customer_in_use"
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// respondError writes the mapped error. Client errors carry the detail;
// server errors only carry message.
func respondError(c *gin.Context, err error, message string) {
	_ = c.Error(err)
	status, code := mapError(err)
	body := gin.H{"error": message, "code": code}
	if status < http.StatusInternalServerError {
		body["detail"] = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message, "code": "validation_error"})
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// parseRange reads ?from=&to= as RFC3339 or YYYY-MM-DD. A date-only "to" is inclusive.
func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	from, ok := parseTime(c.Query("from"), false)
	if !ok {
		badRequest(c, "from must be RFC3339 or YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	to, ok := parseTime(c.Query("to"), true)
	if !ok {
		badRequest(c, "to must be RFC3339 or YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func parseTime(raw string, endOfDay bool) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return t, true
}

func currentUser(c *gin.Context) (uint, string) {
	id, _ := c.Get(middleware.CtxUserID)
	uid, _ := id.(uint)
	return uid, c.GetString(middleware.CtxUsername)
}
