// Package pricing holds the pure calculation rules shared by the live cart
// preview and the invoice commit: tier price resolution, line math, invoice
// totals, loyalty redemption and payment reconciliation.
package pricing

import (
	"strings"

	"go-pos-retail/internal/models"

	"github.com/shopspring/decimal"
)

// ResolveUnitPrice picks the unit price for a product sold to a customer of
// the given type. A remembered last-purchase price for the same customer and
// product wins over the tier price; a missing retail price resolves to zero.
func ResolveUnitPrice(p models.Product, customerType string, lastPrice decimal.NullDecimal) decimal.Decimal {
	if lastPrice.Valid {
		return lastPrice.Decimal
	}
	return TierPrice(p, customerType)
}

// TierPrice resolves retail/wholesale/VIP pricing without price memory.
func TierPrice(p models.Product, customerType string) decimal.Decimal {
	switch strings.ToLower(strings.TrimSpace(customerType)) {
	case "wholesale":
		if p.WholesalePrice.Valid {
			return p.WholesalePrice.Decimal
		}
	case "vip":
		if p.VIPPrice.Valid {
			return p.VIPPrice.Decimal
		}
	}
	if p.RetailPrice.Valid {
		return p.RetailPrice.Decimal
	}
	return decimal.Zero
}

// CustomerType returns the pricing type for an optional customer.
// Walk-in sales price as Retail.
func CustomerType(c *models.Customer) string {
	if c == nil || strings.TrimSpace(c.Type) == "" {
		return models.CustomerRetail
	}
	return c.Type
}
