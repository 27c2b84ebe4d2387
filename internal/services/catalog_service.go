package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-pos-retail/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductPatch is a partial catalog edit. Stock is not editable here: it
// moves only through invoices and the adjustment ledger.
type ProductPatch struct {
	Name           *string              `json:"name"`
	SKU            *string              `json:"sku"`
	Barcode        *string              `json:"barcode"`
	Category       *string              `json:"category"`
	RetailPrice    *decimal.NullDecimal `json:"retail_price"`
	WholesalePrice *decimal.NullDecimal `json:"wholesale_price"`
	VIPPrice       *decimal.NullDecimal `json:"vip_price"`
	CostPrice      *decimal.Decimal     `json:"cost_price"`
	MinStock       *int                 `json:"min_stock"`
	PointsPerUnit  *int                 `json:"points_per_unit"`
	ExpiryDate     *time.Time           `json:"expiry_date"`
	ImageURL       *string              `json:"image_url"`
}

type CatalogService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCatalogService(db *gorm.DB, log *zap.Logger) *CatalogService {
	return &CatalogService{db: db, log: log.Named("catalog.service")}
}

// List returns products ordered by name, optionally filtered by a search term
// matched against name, sku and barcode.
func (s *CatalogService) List(ctx context.Context, query string) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Model(&models.Product{})
	if term := strings.TrimSpace(query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR barcode = ?", like, like, term)
	}
	var out []models.Product
	err := q.Order("name asc").Order("id asc").Find(&out).Error
	return out, err
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, id)
		}
		return nil, err
	}
	return &p, nil
}

// GetByBarcode serves the register's scanner lookup. Falls back to SKU.
func (s *CatalogService) GetByBarcode(ctx context.Context, code string) (*models.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: barcode is required", ErrValidation)
	}
	var p models.Product
	err := s.db.WithContext(ctx).Where("barcode = ? OR sku = ?", code, code).Order("id asc").First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: barcode %s", ErrProductNotFound, code)
		}
		return nil, err
	}
	return &p, nil
}

// Create adds a product. Opening stock, when given, is booked through the
// ledger as a Stock In row so that every stock movement stays auditable.
func (s *CatalogService) Create(ctx context.Context, p models.Product, userID uint) (*models.Product, error) {
	p.ID = 0
	p.Name = strings.TrimSpace(p.Name)
	p.SKU = strings.TrimSpace(p.SKU)
	if p.Barcode != nil && strings.TrimSpace(*p.Barcode) == "" {
		p.Barcode = nil
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if p.CurrentStock < 0 {
		return nil, fmt.Errorf("%w: current_stock must not be negative", ErrValidation)
	}
	opening := p.CurrentStock

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			if isDuplicateKey(err) {
				return fmt.Errorf("%w: sku or barcode already in use", ErrDuplicate)
			}
			return err
		}
		if opening == 0 {
			return nil
		}
		return tx.Create(&models.InventoryAdjustment{
			ProductID:     p.ID,
			ProductName:   p.Name,
			Type:          models.AdjustmentStockIn,
			Quantity:      opening,
			PreviousStock: 0,
			NewStock:      opening,
			Reason:        "Opening stock",
			AdjustedBy:    userID,
			CreatedAt:     time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("product created", zap.Uint("product_id", p.ID), zap.String("sku", p.SKU))
	return &p, nil
}

// Update applies a partial edit and returns the stored product.
func (s *CatalogService) Update(ctx context.Context, id uint, patch ProductPatch) (*models.Product, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	next := *current
	if patch.Name != nil {
		next.Name = strings.TrimSpace(*patch.Name)
		updates["name"] = next.Name
	}
	if patch.SKU != nil {
		next.SKU = strings.TrimSpace(*patch.SKU)
		updates["sku"] = next.SKU
	}
	if patch.Barcode != nil {
		if b := strings.TrimSpace(*patch.Barcode); b != "" {
			next.Barcode = &b
			updates["barcode"] = b
		} else {
			next.Barcode = nil
			updates["barcode"] = nil
		}
	}
	if patch.Category != nil {
		updates["category"] = strings.TrimSpace(*patch.Category)
	}
	if patch.RetailPrice != nil {
		next.RetailPrice = *patch.RetailPrice
		updates["retail_price"] = next.RetailPrice
	}
	if patch.WholesalePrice != nil {
		next.WholesalePrice = *patch.WholesalePrice
		updates["wholesale_price"] = next.WholesalePrice
	}
	if patch.VIPPrice != nil {
		next.VIPPrice = *patch.VIPPrice
		updates["vip_price"] = next.VIPPrice
	}
	if patch.CostPrice != nil {
		next.CostPrice = *patch.CostPrice
		updates["cost_price"] = next.CostPrice
	}
	if patch.MinStock != nil {
		next.MinStock = *patch.MinStock
		updates["min_stock"] = next.MinStock
	}
	if patch.PointsPerUnit != nil {
		next.PointsPerUnit = *patch.PointsPerUnit
		updates["points_per_unit"] = next.PointsPerUnit
	}
	if patch.ExpiryDate != nil {
		updates["expiry_date"] = patch.ExpiryDate.UTC()
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}
	if len(updates) == 0 {
		return current, nil
	}
	if err := validateProduct(next); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(current).Updates(updates).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: sku or barcode already in use", ErrDuplicate)
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a product unless a historical invoice references it.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.InvoiceItem{}).Where("product_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("%w: product %d is on %d invoice lines", ErrProductInUse, id, refs)
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: product %d", ErrProductNotFound, id)
		}
		return nil
	})
}

// SetImage records an uploaded image URL.
func (s *CatalogService) SetImage(ctx context.Context, id uint, url string) (*models.Product, error) {
	return s.Update(ctx, id, ProductPatch{ImageURL: &url})
}

func validateProduct(p models.Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if p.SKU == "" {
		return fmt.Errorf("%w: sku is required", ErrValidation)
	}
	for field, price := range map[string]decimal.NullDecimal{
		"retail_price":    p.RetailPrice,
		"wholesale_price": p.WholesalePrice,
		"vip_price":       p.VIPPrice,
	} {
		if price.Valid && price.Decimal.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", ErrValidation, field)
		}
	}
	if p.CostPrice.IsNegative() {
		return fmt.Errorf("%w: cost_price must not be negative", ErrValidation)
	}
	if p.MinStock < 0 || p.PointsPerUnit < 0 {
		return fmt.Errorf("%w: min_stock and points_per_unit must not be negative", ErrValidation)
	}
	return nil
}
