package handlers

import (
	"net/http"
	"time"

	"go-pos-retail/internal/auth"
	"go-pos-retail/internal/middleware"
	"go-pos-retail/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RouterOptions struct {
	Log               *zap.Logger
	Tokens            *auth.Issuer
	CORSOrigins       []string
	AllowRegistration bool
	Redis             *redis.Client
	LoginRateLimit    int
	UploadDir         string
	WebDir            string
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(d *Deps, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(opts.Log))

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })
	r.POST("/login", middleware.LoginRateLimiter(opts.Redis, opts.LoginRateLimit, opts.Log), d.AuthHandler.Login)
	if opts.UploadDir != "" {
		r.Static("/uploads", opts.UploadDir)
	}

	// --- FEATURE FLAG: Staff Registration ---
	if opts.AllowRegistration {
		r.POST("/register", d.AuthHandler.Register)
		opts.Log.Warn("registration route is open; disable ALLOW_REGISTRATION in production")
	}

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(opts.Tokens))
	{
		can := func(module, action string) gin.HandlerFunc {
			return middleware.RequirePermission(d.Permissions, module, action)
		}

		// Catalog
		api.GET("/products", can(services.ModuleProducts, services.ActionView), d.ProductHandler.List)
		api.GET("/products/search", can(services.ModuleProducts, services.ActionView), d.ProductHandler.Search)
		api.GET("/products/scan/:barcode", can(services.ModuleProducts, services.ActionView), d.ProductHandler.Scan)
		api.GET("/products/:id", can(services.ModuleProducts, services.ActionView), d.ProductHandler.Get)
		api.POST("/products", can(services.ModuleProducts, services.ActionAdd), d.ProductHandler.Create)
		api.PATCH("/products/:id", can(services.ModuleProducts, services.ActionEdit), d.ProductHandler.Update)
		api.POST("/products/:id/image", can(services.ModuleProducts, services.ActionEdit), d.ProductHandler.UploadImage)
		api.DELETE("/products/:id", can(services.ModuleProducts, services.ActionDelete), d.ProductHandler.Delete)

		// Customers
		api.GET("/customers", can(services.ModuleCustomers, services.ActionView), d.CustomerHandler.List)
		api.GET("/customers/:id", can(services.ModuleCustomers, services.ActionView), d.CustomerHandler.Get)
		api.GET("/customers/:id/last-price/:productId", can(services.ModuleInvoices, services.ActionView), d.InvoiceHandler.LastPrice)
		api.POST("/customers", can(services.ModuleCustomers, services.ActionAdd), d.CustomerHandler.Create)
		api.PATCH("/customers/:id", can(services.ModuleCustomers, services.ActionEdit), d.CustomerHandler.Update)
		api.DELETE("/customers/:id", can(services.ModuleCustomers, services.ActionDelete), d.CustomerHandler.Delete)

		// Invoices
		api.POST("/invoices/preview", can(services.ModuleInvoices, services.ActionAdd), d.InvoiceHandler.Preview)
		api.POST("/invoices", can(services.ModuleInvoices, services.ActionAdd), d.InvoiceHandler.Create)
		api.GET("/invoices", can(services.ModuleInvoices, services.ActionView), d.InvoiceHandler.List)
		api.GET("/invoices/:id", can(services.ModuleInvoices, services.ActionView), d.InvoiceHandler.Get)

		// Inventory ledger
		api.POST("/inventory/adjustments", can(services.ModuleInventory, services.ActionAdd), d.InventoryHandler.Adjust)
		api.GET("/inventory/adjustments", can(services.ModuleInventory, services.ActionView), d.InventoryHandler.List)

		// Reports and assistant
		api.GET("/reports/sales", can(services.ModuleReports, services.ActionView), d.ReportHandler.Sales)
		api.GET("/reports/low-stock", can(services.ModuleReports, services.ActionView), d.ReportHandler.LowStock)
		api.GET("/reports/valuation", can(services.ModuleReports, services.ActionView), d.ReportHandler.Valuation)
		api.POST("/ask", can(services.ModuleReports, services.ActionView), d.AIHandler.Ask)

		// Roles: only admin edits the permission table
		api.GET("/roles/:role/permissions", can(services.ModuleRoles, services.ActionView), d.PermissionHandler.Get)
		api.PUT("/roles/:role/permissions", middleware.RequireRole(services.RoleAdmin), d.PermissionHandler.Put)
		api.GET("/system/status", middleware.RequireRole(services.RoleAdmin), d.SystemHandler.Status)
	}

	// --- DEPLOYMENT: Serve the admin UI ---
	if opts.WebDir != "" {
		r.Static("/assets", opts.WebDir+"/assets")
		// SPA Catch-All: unknown paths serve index.html so the UI can route
		r.NoRoute(func(c *gin.Context) {
			c.File(opts.WebDir + "/index.html")
		})
	}

	return r
}
