package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go-pos-retail/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var invoiceRefPattern = regexp.MustCompile(`INV-[A-Za-z0-9-]+`)

// AdjustmentRequest is one manual stock change. Quantity is used by
// Stock In and Stock Out; NewStock by Adjust.
type AdjustmentRequest struct {
	ProductID uint   `json:"product_id"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	NewStock  *int   `json:"new_stock"`
	Reason    string `json:"reason"`
	UserID    uint   `json:"-"`
	UserName  string `json:"-"`
}

type InventoryService struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewInventoryService(db *gorm.DB, log *zap.Logger) *InventoryService {
	return &InventoryService{db: db, log: log.Named("inventory.service"), now: time.Now}
}

// Adjust applies the change to the product's stock and appends one ledger
// row. Stock Out has no floor: stock may go negative.
func (s *InventoryService) Adjust(ctx context.Context, req AdjustmentRequest) (*models.InventoryAdjustment, error) {
	typ, ok := NormalizeAdjustmentType(req.Type)
	if !ok {
		return nil, fmt.Errorf("%w: type %q is not supported", ErrInvalidAdjustment, req.Type)
	}
	if req.ProductID == 0 {
		return nil, fmt.Errorf("%w: product_id is required", ErrValidation)
	}
	switch typ {
	case models.AdjustmentStockIn, models.AdjustmentStockOut:
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidAdjustment)
		}
	case models.AdjustmentAdjust:
		if req.NewStock == nil || *req.NewStock < 0 {
			return nil, fmt.Errorf("%w: new_stock must be zero or more", ErrInvalidAdjustment)
		}
	}

	var row models.InventoryAdjustment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Read current stock under lock
		var product models.Product
		if err := forUpdate(tx).First(&product, req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d", ErrProductNotFound, req.ProductID)
			}
			return err
		}

		// 2. Derive the new stock
		previous := product.CurrentStock
		next, qty := previous, req.Quantity
		switch typ {
		case models.AdjustmentStockIn:
			next = previous + req.Quantity
		case models.AdjustmentStockOut:
			next = previous - req.Quantity
		case models.AdjustmentAdjust:
			next = *req.NewStock
			qty = next - previous
			if qty < 0 {
				qty = -qty
			}
		}

		// 3. Persist stock
		if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).
			UpdateColumn("current_stock", next).Error; err != nil {
			return err
		}

		// 4. Append the ledger row
		name := req.UserName
		if name == "" && req.UserID != 0 {
			var u models.User
			if err := tx.Select("name", "username").First(&u, req.UserID).Error; err == nil {
				name = u.Name
				if name == "" {
					name = u.Username
				}
			}
		}
		row = models.InventoryAdjustment{
			ProductID:      product.ID,
			ProductName:    product.Name,
			Type:           typ,
			Quantity:       qty,
			PreviousStock:  previous,
			NewStock:       next,
			Reason:         strings.TrimSpace(req.Reason),
			InvoiceRef:     invoiceRef(req.Reason),
			AdjustedBy:     req.UserID,
			AdjustedByName: name,
			CreatedAt:      s.now().UTC(),
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("stock adjusted",
		zap.Uint("product_id", row.ProductID),
		zap.String("type", row.Type),
		zap.Int("previous_stock", row.PreviousStock),
		zap.Int("new_stock", row.NewStock),
	)
	if row.NewStock < 0 {
		s.log.Warn("stock is negative", zap.Uint("product_id", row.ProductID), zap.Int("stock", row.NewStock))
	}
	return &row, nil
}

// List returns ledger rows. For one product they come in creation order;
// unfiltered, newest first.
func (s *InventoryService) List(ctx context.Context, productID uint, limit int) ([]models.InventoryAdjustment, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	q := s.db.WithContext(ctx).Model(&models.InventoryAdjustment{})
	if productID != 0 {
		q = q.Where("product_id = ?", productID).Order("id asc")
	} else {
		q = q.Order("id desc")
	}
	var out []models.InventoryAdjustment
	err := q.Limit(limit).Find(&out).Error
	return out, err
}

// NormalizeAdjustmentType accepts "Stock In", "stock_in", "STOCKIN" and the like.
func NormalizeAdjustmentType(t string) (string, bool) {
	key := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(t))
	switch key {
	case "stockin":
		return models.AdjustmentStockIn, true
	case "stockout":
		return models.AdjustmentStockOut, true
	case "adjust":
		return models.AdjustmentAdjust, true
	}
	return "", false
}

func invoiceRef(reason string) *string {
	ref := invoiceRefPattern.FindString(reason)
	if ref == "" {
		return nil
	}
	return &ref
}
