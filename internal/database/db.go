package database

import (
	"fmt"
	"strings"
	"time"

	"go-pos-retail/internal/config"
	"go-pos-retail/internal/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the configured store, waits for it to come up and syncs the schema.
func Connect(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN not configured for driver %q", cfg.DBDriver)
	}

	retries := cfg.DBConnectRetries
	if retries < 1 {
		retries = 1
	}

	level := logger.Warn
	if strings.EqualFold(cfg.LogLevel, "debug") {
		level = logger.Info
	}

	var (
		db  *gorm.DB
		err error
	)
	// Wait for DB to be ready
	for i := 0; i < retries; i++ {
		db, err = Open(cfg.DBDriver, cfg.DBDSN, level)
		if err == nil {
			break
		}
		log.Warn("database connect failed, retrying",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", retries),
			zap.Error(err),
		)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s after %d attempts: %w", cfg.DBDriver, retries, err)
	}
	log.Info("database connected", zap.String("driver", cfg.DBDriver))

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	log.Info("database schema synced")
	return db, nil
}

// Open returns a GORM handle for mysql, postgres or sqlite.
func Open(driver, dsn string, level logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	if dialector.Name() == "sqlite" {
		// One connection keeps ":memory:" databases alive and serializes writers.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// AutoMigrate creates or updates every table the POS needs.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Customer{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.InvoicePayment{},
		&models.InventoryAdjustment{},
		&models.RolePermission{},
	)
}
