// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"bizledger/internal/domain/accounts"
	"bizledger/internal/domain/auth"
	"bizledger/internal/domain/catalogs/product"
	"bizledger/internal/domain/catalogs/warehouse"
	"bizledger/internal/domain/documents/payment"
	"bizledger/internal/domain/documents/purchase"
	"bizledger/internal/domain/documents/quotation"
	"bizledger/internal/domain/documents/sale"
	"bizledger/internal/domain/inventory"
	"bizledger/internal/domain/ledger"
	"bizledger/internal/domain/posting"
	"bizledger/internal/infrastructure/http/v1/handlers"
	"bizledger/internal/infrastructure/http/v1/middleware"
	"bizledger/internal/infrastructure/storage/postgres"
	"bizledger/pkg/logger"
)

// RouterConfig holds everything the API surface needs.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	JWTService *auth.JWTService
	APIKeys    *auth.APIKeySet

	Accounts    *accounts.Registry
	Poster      *ledger.Poster
	Reader      *ledger.Reader
	StockEngine *inventory.Engine
	StockReader *inventory.StockLedger
	Posting     *posting.Engine

	Sales      *sale.Service
	Purchases  *purchase.Service
	Payments   *payment.Service
	Quotations *quotation.Service

	Products   *product.Service
	Warehouses *warehouse.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	base := handlers.NewBaseHandler()

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	apiV1 := router.Group("/api/v1")
	{
		// Token exchange is the only unauthenticated API endpoint.
		authHandler := handlers.NewAuthHandler(base, cfg.JWTService, cfg.APIKeys)
		authHandler.RegisterRoutes(apiV1.Group("/auth"))

		protected := apiV1.Group("")
		protected.Use(middleware.Auth(cfg.JWTService, cfg.APIKeys))

		handlers.NewAccountHandler(base, cfg.Accounts).
			RegisterRoutes(protected.Group("/accounts"))
		handlers.NewLedgerHandler(base, cfg.Poster, cfg.Reader).
			RegisterRoutes(protected.Group("/ledger"))
		handlers.NewStockHandler(base, cfg.StockEngine, cfg.StockReader).
			RegisterRoutes(protected.Group("/stock"))

		catalog := protected.Group("/catalog")
		handlers.NewProductHandler(base, cfg.Products).
			RegisterRoutes(catalog.Group("/products"))
		handlers.NewWarehouseHandler(base, cfg.Warehouses).
			RegisterRoutes(catalog.Group("/warehouses"))

		documents := protected.Group("/documents")
		handlers.NewSaleHandler(base, cfg.Sales, cfg.Posting).
			RegisterRoutes(documents.Group("/sales"))
		handlers.NewPurchaseHandler(base, cfg.Purchases, cfg.Posting).
			RegisterRoutes(documents.Group("/purchases"))
		handlers.NewPaymentHandler(base, cfg.Payments, cfg.Posting).
			RegisterRoutes(documents.Group("/payments"))
		handlers.NewQuotationHandler(base, cfg.Quotations).
			RegisterRoutes(documents.Group("/quotations"))
	}

	return router
}
