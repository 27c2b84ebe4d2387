package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-pos-retail/internal/models"
	"go-pos-retail/internal/pricing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommitMode selects how the invoice commit touches storage.
type CommitMode string

const (
	// CommitAtomic runs the whole commit in one transaction and reserves
	// stock with a conditional decrement. Any failure rolls everything back.
	CommitAtomic CommitMode = "atomic"
	// CommitLegacy runs each step as its own storage call with an unguarded
	// decrement. Stock can go negative and a failing step leaves earlier
	// steps applied.
	CommitLegacy CommitMode = "legacy"
)

// InvoiceItemInput is one submitted cart row. A nil UnitPrice is resolved
// from price memory and the customer's tier.
type InvoiceItemInput struct {
	ProductID   uint             `json:"product_id"`
	Quantity    int              `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	DiscountPct decimal.Decimal  `json:"discount_pct"`
}

// InvoiceRequest is the finalized payload sent by the register.
type InvoiceRequest struct {
	InvoiceNumber string             `json:"invoice_number"`
	CustomerID    *uint              `json:"customer_id"`
	StaffID       uint               `json:"-"`
	Items         []InvoiceItemInput `json:"items"`
	DiscountPct   decimal.Decimal    `json:"discount_pct"`
	TaxPct        decimal.Decimal    `json:"tax_pct"`
	RedeemPoints  int                `json:"redeem_points"`
	Payments      []pricing.Payment  `json:"payments"`
	Status        string             `json:"status"`
	// Total is the client's preview total. It is compared, never stored.
	Total *decimal.Decimal `json:"total,omitempty"`
}

// PreviewLine is one priced cart row.
type PreviewLine struct {
	ProductID     uint            `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	DiscountPct   decimal.Decimal `json:"discount_pct"`
	EffectiveUnit decimal.Decimal `json:"effective_unit"`
	LineTotal     decimal.Decimal `json:"line_total"`
}

// Preview is the live cart calculation shown before submission.
type Preview struct {
	Lines    []PreviewLine          `json:"lines"`
	Totals   pricing.Totals         `json:"totals"`
	Payments pricing.Reconciliation `json:"payments"`
}

type InvoiceOptions struct {
	Mode      CommitMode
	PointsCap pricing.PointsCapMode
	Now       func() time.Time
}

type InvoiceService struct {
	db        *gorm.DB
	log       *zap.Logger
	ids       *snowflake.Node
	mode      CommitMode
	pointsCap pricing.PointsCapMode
	now       func() time.Time
}

func NewInvoiceService(db *gorm.DB, log *zap.Logger, ids *snowflake.Node, opts InvoiceOptions) *InvoiceService {
	mode := opts.Mode
	if mode != CommitLegacy {
		mode = CommitAtomic
	}
	pointsCap := opts.PointsCap
	if pointsCap == "" {
		pointsCap = pricing.CapPerRow
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &InvoiceService{
		db:        db,
		log:       log.Named("invoice.service"),
		ids:       ids,
		mode:      mode,
		pointsCap: pointsCap,
		now:       now,
	}
}

// Mode reports the configured commit mode.
func (s *InvoiceService) Mode() CommitMode { return s.mode }

// Commit persists the invoice, decrements stock for every line and updates
// the customer's spend and loyalty balance.
func (s *InvoiceService) Commit(ctx context.Context, req InvoiceRequest) (*models.Invoice, error) {
	status, err := validateInvoice(&req)
	if err != nil {
		return nil, err
	}

	var inv *models.Invoice
	if s.mode == CommitLegacy {
		inv, err = s.commit(s.db.WithContext(ctx), req, status, false)
	} else {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var cerr error
			inv, cerr = s.commit(tx, req, status, true)
			return cerr
		})
	}
	if err != nil {
		s.log.Warn("invoice commit failed",
			zap.String("mode", string(s.mode)),
			zap.Uint("staff_id", req.StaffID),
			zap.Error(err),
		)
		return nil, err
	}

	s.log.Info("invoice committed",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("mode", string(s.mode)),
		zap.String("total", inv.Total.StringFixed(2)),
		zap.Int("items", len(inv.Items)),
		zap.Int("points_earned", inv.PointsEarned),
		zap.Int("points_redeemed", inv.PointsRedeemed),
	)
	return inv, nil
}

func (s *InvoiceService) commit(db *gorm.DB, req InvoiceRequest, status string, guarded bool) (*models.Invoice, error) {
	now := s.now().UTC()

	// 1. Invoice number: generated unless the register supplied one
	number := req.InvoiceNumber
	if number == "" {
		number = s.nextInvoiceNumber(now)
	} else {
		var n int64
		if err := db.Model(&models.Invoice{}).Where("invoice_number = ?", number).Count(&n).Error; err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateInvoiceNumber, number)
		}
	}

	// 2. Customer drives tier pricing and the redemption cap
	var customer *models.Customer
	if req.CustomerID != nil {
		c, err := loadCustomer(db, *req.CustomerID, guarded)
		if err != nil {
			return nil, err
		}
		customer = c
	}
	customerType := pricing.CustomerType(customer)

	// 3. Stock, one product at a time
	items := make([]models.InvoiceItem, 0, len(req.Items))
	lines := make([]pricing.Line, 0, len(req.Items))
	for _, in := range req.Items {
		var product models.Product
		if err := db.First(&product, in.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, in.ProductID)
			}
			return nil, err
		}

		unit, err := s.unitPrice(db, in, product, customer, customerType)
		if err != nil {
			return nil, err
		}

		if err := decrementStock(db, product, in.Quantity, guarded); err != nil {
			return nil, err
		}

		line := pricing.Line{
			ProductID:     product.ID,
			Quantity:      in.Quantity,
			UnitPrice:     unit,
			DiscountPct:   pricing.ClampPct(in.DiscountPct),
			PointsPerUnit: product.PointsPerUnit,
		}
		lines = append(lines, line)
		items = append(items, models.InvoiceItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   unit,
			DiscountPct: line.DiscountPct,
			Quantity:    in.Quantity,
			CostPrice:   product.CostPrice,
			LineTotal:   line.Amount(),
		})
	}

	// 4. Totals come from the same rules the live preview uses
	available := 0
	if customer != nil {
		available = customer.LoyaltyPoints
	}
	totals := pricing.Compute(pricing.Cart{
		Lines:           lines,
		DiscountPct:     req.DiscountPct,
		TaxPct:          req.TaxPct,
		RedeemPoints:    req.RedeemPoints,
		AvailablePoints: available,
	})
	payAvailable := available
	if s.pointsCap == pricing.CapShared {
		payAvailable = pricing.SharedBudget(available, totals)
	}
	recon := pricing.Reconcile(req.Payments, totals.Total, totals.GrossTotal, payAvailable, s.pointsCap)

	if req.Total != nil && !req.Total.Round(2).Equal(totals.Total.Round(2)) {
		s.log.Warn("client total mismatch",
			zap.String("invoice_number", number),
			zap.String("client_total", req.Total.StringFixed(2)),
			zap.String("server_total", totals.Total.StringFixed(2)),
		)
	}

	// 5. Customer spend and loyalty balance
	redeemed, earned := 0, 0
	if customer != nil {
		redeemed = totals.UsablePoints + recon.PointsPaid
		if redeemed > customer.LoyaltyPoints {
			redeemed = customer.LoyaltyPoints
		}
		earned = totals.EarnedPoints
		res := db.Model(&models.Customer{}).Where("id = ?", customer.ID).Updates(map[string]interface{}{
			"total_spent":    customer.TotalSpent.Add(totals.Total).Round(2),
			"loyalty_points": customer.LoyaltyPoints - redeemed + earned,
			"last_visit":     now,
		})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("%w: customer %d", ErrCustomerNotFound, customer.ID)
		}
	}

	// 6. The invoice itself, with frozen lines and declared payments
	payments := make([]models.InvoicePayment, 0, len(recon.Payments))
	for _, p := range recon.Payments {
		payments = append(payments, models.InvoicePayment{Method: p.Method, Amount: p.Amount.Round(2)})
	}
	inv := &models.Invoice{
		InvoiceNumber:  number,
		CustomerID:     req.CustomerID,
		StaffID:        req.StaffID,
		Items:          items,
		Payments:       payments,
		Subtotal:       totals.Subtotal.Round(2),
		DiscountPct:    pricing.ClampPct(req.DiscountPct),
		DiscountAmount: totals.DiscountAmount.Round(2),
		TaxRate:        decimal.Max(decimal.Zero, req.TaxPct),
		TaxAmount:      totals.TaxAmount.Round(2),
		PointsRedeemed: redeemed,
		PointsEarned:   earned,
		Total:          totals.Total.Round(2),
		AmountPaid:     recon.TotalPayments.Round(2),
		Balance:        recon.Balance.Round(2),
		ChangeDue:      recon.Change.Round(2),
		Status:         status,
		CreatedAt:      now,
	}
	if err := db.Create(inv).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateInvoiceNumber, number)
		}
		return nil, err
	}
	return inv, nil
}

func (s *InvoiceService) unitPrice(db *gorm.DB, in InvoiceItemInput, p models.Product, c *models.Customer, customerType string) (decimal.Decimal, error) {
	if in.UnitPrice != nil {
		return *in.UnitPrice, nil
	}
	last := decimal.NullDecimal{}
	if c != nil {
		var err error
		last, err = lastSalePrice(db, c.ID, p.ID)
		if err != nil {
			return decimal.Zero, err
		}
	}
	return pricing.ResolveUnitPrice(p, customerType, last), nil
}

func (s *InvoiceService) nextInvoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), s.ids.Generate().String())
}

// Preview prices a draft cart exactly the way Commit will, without touching
// storage. Quantities and discounts are clamped the way the register clamps
// them on entry; rows without a known product are carried but not counted.
func (s *InvoiceService) Preview(ctx context.Context, req InvoiceRequest) (*Preview, error) {
	db := s.db.WithContext(ctx)

	var customer *models.Customer
	if req.CustomerID != nil {
		c, err := loadCustomer(db, *req.CustomerID, false)
		if err != nil {
			return nil, err
		}
		customer = c
	}
	customerType := pricing.CustomerType(customer)

	out := &Preview{Lines: make([]PreviewLine, 0, len(req.Items))}
	lines := make([]pricing.Line, 0, len(req.Items))
	for _, in := range req.Items {
		line := pricing.Line{DiscountPct: pricing.ClampPct(in.DiscountPct)}
		var name string
		if in.ProductID != 0 {
			var product models.Product
			err := db.First(&product, in.ProductID).Error
			switch {
			case err == nil:
				unit, err := s.unitPrice(db, in, product, customer, customerType)
				if err != nil {
					return nil, err
				}
				line.ProductID = product.ID
				line.Quantity = pricing.ClampQuantity(in.Quantity, product.CurrentStock)
				line.UnitPrice = unit
				line.PointsPerUnit = product.PointsPerUnit
				name = product.Name
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return nil, err
			}
		}
		lines = append(lines, line)
		out.Lines = append(out.Lines, PreviewLine{
			ProductID:     line.ProductID,
			ProductName:   name,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			DiscountPct:   line.DiscountPct,
			EffectiveUnit: line.EffectiveUnit(),
			LineTotal:     line.Amount(),
		})
	}

	available := 0
	if customer != nil {
		available = customer.LoyaltyPoints
	}
	out.Totals = pricing.Compute(pricing.Cart{
		Lines:           lines,
		DiscountPct:     req.DiscountPct,
		TaxPct:          req.TaxPct,
		RedeemPoints:    req.RedeemPoints,
		AvailablePoints: available,
	})
	payAvailable := available
	if s.pointsCap == pricing.CapShared {
		payAvailable = pricing.SharedBudget(available, out.Totals)
	}
	out.Payments = pricing.Reconcile(req.Payments, out.Totals.Total, out.Totals.GrossTotal, payAvailable, s.pointsCap)
	return out, nil
}

// Get returns an invoice with its frozen items and payments.
func (s *InvoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&inv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invoice %d", ErrInvoiceNotFound, id)
		}
		return nil, err
	}
	return &inv, nil
}

// List returns invoices created in [from, to), newest first. Zero bounds are open.
func (s *InvoiceService) List(ctx context.Context, from, to time.Time, limit int) ([]models.Invoice, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := s.db.WithContext(ctx).Model(&models.Invoice{})
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from.UTC())
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to.UTC())
	}
	var out []models.Invoice
	err := q.Order("created_at desc").Order("id desc").Limit(limit).Find(&out).Error
	return out, err
}

// LastPrice returns the remembered sale price for a customer and product.
func (s *InvoiceService) LastPrice(ctx context.Context, customerID, productID uint) (decimal.NullDecimal, error) {
	return lastSalePrice(s.db.WithContext(ctx), customerID, productID)
}

func validateInvoice(req *InvoiceRequest) (string, error) {
	if len(req.Items) == 0 {
		return "", fmt.Errorf("%w: items must not be empty", ErrValidation)
	}
	for i, it := range req.Items {
		if it.ProductID == 0 {
			return "", fmt.Errorf("%w: items[%d].product_id is required", ErrValidation, i)
		}
		if it.Quantity <= 0 {
			return "", fmt.Errorf("%w: items[%d].quantity must be positive", ErrValidation, i)
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return "", fmt.Errorf("%w: items[%d].unit_price must not be negative", ErrValidation, i)
		}
	}
	for i, p := range req.Payments {
		method, ok := pricing.NormalizeMethod(p.Method)
		if !ok {
			return "", fmt.Errorf("%w: payments[%d].method %q is not supported", ErrValidation, i, p.Method)
		}
		if p.Amount.IsNegative() {
			return "", fmt.Errorf("%w: payments[%d].amount must not be negative", ErrValidation, i)
		}
		req.Payments[i].Method = method
	}
	if req.CustomerID != nil && *req.CustomerID == 0 {
		req.CustomerID = nil
	}
	req.InvoiceNumber = strings.TrimSpace(req.InvoiceNumber)
	if len(req.InvoiceNumber) > 64 {
		return "", fmt.Errorf("%w: invoice_number is too long", ErrValidation)
	}

	switch strings.ToLower(strings.TrimSpace(req.Status)) {
	case "", "completed":
		return models.InvoiceCompleted, nil
	case "draft":
		return models.InvoiceDraft, nil
	default:
		return "", fmt.Errorf("%w: status %q is not supported", ErrValidation, req.Status)
	}
}

func loadCustomer(db *gorm.DB, id uint, lock bool) (*models.Customer, error) {
	q := db
	if lock {
		q = forUpdate(db)
	}
	var c models.Customer
	if err := q.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer %d", ErrCustomerNotFound, id)
		}
		return nil, err
	}
	return &c, nil
}

// decrementStock subtracts qty from the product's stock. Guarded, the update
// only matches while enough stock remains; unguarded, stock may go negative.
func decrementStock(db *gorm.DB, p models.Product, qty int, guarded bool) error {
	q := db.Model(&models.Product{}).Where("id = ?", p.ID)
	if guarded {
		q = q.Where("current_stock >= ?", qty)
	}
	res := q.UpdateColumn("current_stock", gorm.Expr("current_stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if !guarded {
			return fmt.Errorf("%w: product %d", ErrProductNotFound, p.ID)
		}
		// the row read before the update may be stale
		var current []int
		if err := db.Model(&models.Product{}).Where("id = ?", p.ID).Pluck("current_stock", &current).Error; err != nil {
			return err
		}
		if len(current) == 0 {
			return fmt.Errorf("%w: product %d", ErrProductNotFound, p.ID)
		}
		return fmt.Errorf("%w: %s (requested %d, available %d)", ErrInsufficientStock, p.Name, qty, current[0])
	}
	return nil
}

// lastSalePrice finds the most recent frozen unit price on a completed
// invoice for this customer and product.
func lastSalePrice(db *gorm.DB, customerID, productID uint) (decimal.NullDecimal, error) {
	var rows []struct {
		UnitPrice decimal.Decimal
	}
	err := db.Table("invoice_items").
		Select("invoice_items.unit_price").
		Joins("JOIN invoices ON invoices.id = invoice_items.invoice_id").
		Where("invoices.customer_id = ? AND invoices.status = ? AND invoice_items.product_id = ?",
			customerID, models.InvoiceCompleted, productID).
		Order("invoices.created_at desc").
		Order("invoices.id desc").
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	if len(rows) == 0 {
		return decimal.NullDecimal{}, nil
	}
	return decimal.NewNullDecimal(rows[0].UnitPrice), nil
}

// forUpdate locks the selected rows until the transaction ends.
// SQLite has no row locks; its single writer already serializes commits.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
