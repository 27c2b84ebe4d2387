package handlers

import (
	"go-pos-retail/internal/ai"
	"go-pos-retail/internal/auth"
	"go-pos-retail/internal/config"
	"go-pos-retail/internal/pricing"
	"go-pos-retail/internal/services"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	InvoiceHandler    *InvoiceHandler
	InventoryHandler  *InventoryHandler
	ProductHandler    *ProductHandler
	CustomerHandler   *CustomerHandler
	ReportHandler     *ReportHandler
	PermissionHandler *PermissionHandler
	AuthHandler       *AuthHandler
	AIHandler         *AIHandler
	SystemHandler     *SystemHandler

	Permissions *services.PermissionService
}

func NewDeps(db *gorm.DB, cfg config.Config, log *zap.Logger, ids *snowflake.Node, tokens *auth.Issuer, perms *services.PermissionService) *Deps {
	catalogSvc := services.NewCatalogService(db, log)
	customerSvc := services.NewCustomerService(db, log)
	invoiceSvc := services.NewInvoiceService(db, log, ids, services.InvoiceOptions{
		Mode:      services.CommitMode(cfg.CommitMode),
		PointsCap: pricing.ParsePointsCapMode(cfg.PointsCapMode),
	})
	inventorySvc := services.NewInventoryService(db, log)
	reportSvc := services.NewReportService(db, log)
	authSvc := services.NewAuthService(db, log, tokens)

	return &Deps{
		InvoiceHandler:    &InvoiceHandler{Invoices: invoiceSvc},
		InventoryHandler:  &InventoryHandler{Inventory: inventorySvc},
		ProductHandler:    &ProductHandler{Catalog: catalogSvc, UploadDir: cfg.UploadDir, BaseURL: cfg.BaseURL},
		CustomerHandler:   &CustomerHandler{Customers: customerSvc},
		ReportHandler:     &ReportHandler{Reports: reportSvc},
		PermissionHandler: &PermissionHandler{Permissions: perms},
		AuthHandler:       &AuthHandler{Auth: authSvc},
		AIHandler:         &AIHandler{Agent: ai.NewAgent(cfg.GeminiAPIKey, catalogSvc, reportSvc, log)},
		SystemHandler:     &SystemHandler{Invoices: invoiceSvc, NodeID: cfg.SnowflakeNode, PointsCap: string(pricing.ParsePointsCapMode(cfg.PointsCapMode))},
		Permissions:       perms,
	}
}
