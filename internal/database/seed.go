package database

import (
	"go-pos-retail/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPermissions is the capability table installed on an empty database.
// The admin role is not listed: it bypasses permission checks.
var DefaultPermissions = []models.RolePermission{
	{Role: "manager", Module: "products", CanView: true, CanAdd: true, CanEdit: true, CanDelete: true},
	{Role: "manager", Module: "customers", CanView: true, CanAdd: true, CanEdit: true, CanDelete: true},
	{Role: "manager", Module: "invoices", CanView: true, CanAdd: true, CanEdit: true},
	{Role: "manager", Module: "inventory", CanView: true, CanAdd: true},
	{Role: "manager", Module: "reports", CanView: true},
	{Role: "cashier", Module: "products", CanView: true},
	{Role: "cashier", Module: "customers", CanView: true, CanAdd: true, CanEdit: true},
	{Role: "cashier", Module: "invoices", CanView: true, CanAdd: true},
}

// Seed installs default role permissions and, when credentials are given, an
// admin account. Safe to run on every start.
func Seed(db *gorm.DB, log *zap.Logger, adminUsername, adminPassword string) error {
	var n int64
	if err := db.Model(&models.RolePermission{}).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		perms := make([]models.RolePermission, len(DefaultPermissions))
		copy(perms, DefaultPermissions)
		if err := db.Create(&perms).Error; err != nil {
			return err
		}
		log.Info("seeded default role permissions", zap.Int("rows", len(perms)))
	}

	if adminUsername == "" || adminPassword == "" {
		return nil
	}
	var existing int64
	if err := db.Model(&models.User{}).Where("username = ?", adminUsername).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{Username: adminUsername, Name: "Administrator", PasswordHash: string(hash), Role: "admin"}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Info("seeded admin account", zap.String("username", adminUsername))
	return nil
}
