package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer types. The type drives the pricing tier.
const (
	CustomerRetail    = "Retail"
	CustomerMember    = "Member"
	CustomerVIP       = "VIP"
	CustomerWholesale = "Wholesale"
	CustomerDealer    = "Dealer"
	CustomerDepo      = "Depo"
)

// Invoice statuses
const (
	InvoiceDraft     = "Draft"
	InvoiceCompleted = "Completed"
)

// Payment methods. Points is a pseudo-method redeemed 1:1 against currency.
const (
	PaymentCash   = "Cash"
	PaymentBank   = "Bank"
	PaymentCard   = "Card"
	PaymentMobile = "Mobile"
	PaymentPoints = "Points"
)

// Inventory adjustment types
const (
	AdjustmentStockIn  = "Stock In"
	AdjustmentStockOut = "Stock Out"
	AdjustmentAdjust   = "Adjust"
)

// User - A staff member who rings up invoices and adjusts stock
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	Name         string    `gorm:"size:100" json:"name"`
	PasswordHash string    `json:"-"`                         // Never return this in JSON
	Role         string    `gorm:"size:50;index" json:"role"` // 'admin', 'manager', 'cashier'
	CreatedAt    time.Time `json:"created_at"`
}

// Product - The Catalog and its stock counter
type Product struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	Name           string              `gorm:"size:200;not null" json:"name"`
	SKU            string              `gorm:"uniqueIndex;size:64;not null" json:"sku"`
	Barcode        *string             `gorm:"uniqueIndex;size:64" json:"barcode,omitempty"`
	Category       string              `gorm:"size:100;index" json:"category"`
	RetailPrice    decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"retail_price"`
	WholesalePrice decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"wholesale_price"`
	VIPPrice       decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"vip_price"`
	CostPrice      decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0" json:"cost_price"`
	CurrentStock   int                 `gorm:"not null;default:0" json:"current_stock"` // only the invoice commit and the ledger write this
	MinStock       int                 `gorm:"not null;default:0" json:"min_stock"`
	PointsPerUnit  int                 `gorm:"not null;default:0" json:"points_per_unit"`
	ExpiryDate     *time.Time          `json:"expiry_date,omitempty"`
	ImageURL       string              `json:"image_url"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// Customer - Loyalty and tier pricing
type Customer struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:200;not null" json:"name"`
	Phone         string          `gorm:"size:32;not null;index" json:"phone"`
	Username      *string         `gorm:"uniqueIndex;size:50" json:"username,omitempty"`
	Type          string          `gorm:"size:20;not null;default:'Retail'" json:"type"`
	LoyaltyPoints int             `gorm:"not null;default:0" json:"loyalty_points"`
	TotalSpent    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_spent"`
	LastVisit     *time.Time      `json:"last_visit,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Invoice - The Transaction Header. Total is authoritative and never re-derived on read.
type Invoice struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	InvoiceNumber  string           `gorm:"uniqueIndex;size:64;not null" json:"invoice_number"`
	CustomerID     *uint            `gorm:"index" json:"customer_id,omitempty"`
	StaffID        uint             `gorm:"index" json:"staff_id"`
	Items          []InvoiceItem    `gorm:"foreignKey:InvoiceID" json:"items"`
	Payments       []InvoicePayment `gorm:"foreignKey:InvoiceID" json:"payments"`
	Subtotal       decimal.Decimal  `gorm:"type:decimal(14,2);not null" json:"subtotal"`
	DiscountPct    decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:0" json:"discount_pct"`
	DiscountAmount decimal.Decimal  `gorm:"type:decimal(14,2);not null" json:"discount_amount"`
	TaxRate        decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"`
	TaxAmount      decimal.Decimal  `gorm:"type:decimal(14,2);not null" json:"tax_amount"`
	PointsRedeemed int              `gorm:"not null;default:0" json:"points_redeemed"`
	PointsEarned   int              `gorm:"not null;default:0" json:"points_earned"`
	Total          decimal.Decimal  `gorm:"type:decimal(14,2);not null" json:"total"`
	AmountPaid     decimal.Decimal  `gorm:"type:decimal(14,2);not null" json:"amount_paid"`
	Balance        decimal.Decimal  `gorm:"type:decimal(14,2);not null" json:"balance"`
	ChangeDue      decimal.Decimal  `gorm:"type:decimal(14,2);not null" json:"change_due"`
	Status         string           `gorm:"size:20;not null" json:"status"`
	CreatedAt      time.Time        `gorm:"index" json:"created_at"`
}

// InvoiceItem - One frozen line. Prices here never follow later catalog edits.
type InvoiceItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	InvoiceID   uint            `gorm:"index" json:"invoice_id"`
	ProductID   uint            `gorm:"index" json:"product_id"`
	ProductName string          `gorm:"size:200" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	DiscountPct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_pct"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"line_total"`
}

// InvoicePayment - A declared payment instrument. Recorded, not processed.
type InvoicePayment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	InvoiceID uint            `gorm:"index" json:"invoice_id"`
	Method    string          `gorm:"size:20;not null" json:"method"`
	Amount    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
}

// InventoryAdjustment - Append-only ledger row. Never updated or deleted.
type InventoryAdjustment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ProductID      uint      `gorm:"index" json:"product_id"`
	ProductName    string    `gorm:"size:200" json:"product_name"`
	Type           string    `gorm:"size:20;not null" json:"type"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	PreviousStock  int       `json:"previous_stock"`
	NewStock       int       `json:"new_stock"`
	Reason         string    `gorm:"type:text" json:"reason"`
	InvoiceRef     *string   `gorm:"size:64;index" json:"invoice_ref,omitempty"`
	AdjustedBy     uint      `json:"adjusted_by"`
	AdjustedByName string    `gorm:"size:100" json:"adjusted_by_name"`
	CreatedAt      time.Time `json:"created_at"`
}

// RolePermission - One (role, module) capability row
type RolePermission struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Role      string `gorm:"size:50;not null;uniqueIndex:ux_role_module,priority:1" json:"role"`
	Module    string `gorm:"size:50;not null;uniqueIndex:ux_role_module,priority:2" json:"module"`
	CanView   bool   `json:"view"`
	CanAdd    bool   `json:"add"`
	CanEdit   bool   `json:"edit"`
	CanDelete bool   `json:"delete"`
}
