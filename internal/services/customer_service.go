package services

import (
	"context"
	"fmt"
	"strings"

	"go-pos-retail/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var customerTypes = []string{
	models.CustomerRetail,
	models.CustomerMember,
	models.CustomerVIP,
	models.CustomerWholesale,
	models.CustomerDealer,
	models.CustomerDepo,
}

// CustomerInput is the editable part of a customer. Loyalty points, spend
// and last visit move only through invoice commits.
type CustomerInput struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Username *string `json:"username"`
	Type     *string `json:"type"`
}

type CustomerService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCustomerService(db *gorm.DB, log *zap.Logger) *CustomerService {
	return &CustomerService{db: db, log: log.Named("customer.service")}
}

// List returns customers by name, optionally matched on name, phone or username.
func (s *CustomerService) List(ctx context.Context, query string) ([]models.Customer, error) {
	q := s.db.WithContext(ctx).Model(&models.Customer{})
	if term := strings.TrimSpace(query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(username) LIKE ?", like, "%"+term+"%", like)
	}
	var out []models.Customer
	err := q.Order("name asc").Order("id asc").Find(&out).Error
	return out, err
}

func (s *CustomerService) Get(ctx context.Context, id uint) (*models.Customer, error) {
	return loadCustomer(s.db.WithContext(ctx), id, false)
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	c := models.Customer{Type: models.CustomerRetail}
	if err := applyCustomerInput(&c, in); err != nil {
		return nil, err
	}
	if c.Name == "" || c.Phone == "" {
		return nil, fmt.Errorf("%w: name and phone are required", ErrValidation)
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: username already in use", ErrDuplicate)
		}
		return nil, err
	}
	s.log.Info("customer created", zap.Uint("customer_id", c.ID), zap.String("type", c.Type))
	return &c, nil
}

func (s *CustomerService) Update(ctx context.Context, id uint, in CustomerInput) (*models.Customer, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *current
	if err := applyCustomerInput(&next, in); err != nil {
		return nil, err
	}
	if next.Name == "" || next.Phone == "" {
		return nil, fmt.Errorf("%w: name and phone are required", ErrValidation)
	}
	err = s.db.WithContext(ctx).Model(current).Updates(map[string]interface{}{
		"name":     next.Name,
		"phone":    next.Phone,
		"username": next.Username,
		"type":     next.Type,
	}).Error
	if err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: username already in use", ErrDuplicate)
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a customer with no invoice history.
func (s *CustomerService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.Invoice{}).Where("customer_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("%w: customer %d has %d invoices", ErrCustomerInUse, id, refs)
		}
		res := tx.Delete(&models.Customer{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: customer %d", ErrCustomerNotFound, id)
		}
		return nil
	})
}

// NormalizeCustomerType maps any casing of a known type to its canonical name.
func NormalizeCustomerType(t string) (string, bool) {
	for _, known := range customerTypes {
		if strings.EqualFold(strings.TrimSpace(t), known) {
			return known, true
		}
	}
	return "", false
}

func applyCustomerInput(c *models.Customer, in CustomerInput) error {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Username != nil {
		if u := strings.TrimSpace(*in.Username); u != "" {
			c.Username = &u
		} else {
			c.Username = nil
		}
	}
	if in.Type != nil {
		t, ok := NormalizeCustomerType(*in.Type)
		if !ok {
			return fmt.Errorf("%w: customer type %q is not supported", ErrValidation, *in.Type)
		}
		c.Type = t
	}
	return nil
}

