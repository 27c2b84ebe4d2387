package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Error kinds surfaced to the HTTP layer. Callers match with errors.Is.
var (
	ErrValidation             = errors.New("validation_error")
	ErrProductNotFound        = errors.New("product_not_found")
	ErrCustomerNotFound       = errors.New("customer_not_found")
	ErrInvoiceNotFound        = errors.New("invoice_not_found")
	ErrUserNotFound           = errors.New("user_not_found")
	ErrInsufficientStock      = errors.New("insufficient_stock")
	ErrDuplicateInvoiceNumber = errors.New("duplicate_invoice_number")
	ErrDuplicate              = errors.New("duplicate")
	ErrInvalidAdjustment      = errors.New("invalid_adjustment")
	ErrProductInUse           = errors.New("product_in_use")
	ErrCustomerInUse          = errors.New("customer_in_use")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidCredentials     = errors.New("invalid_credentials")
)

// isDuplicateKey reports unique-constraint violations across drivers.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}
