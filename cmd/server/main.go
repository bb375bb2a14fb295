// Package main is the entry point for the bizledger API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

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
	v1 "bizledger/internal/infrastructure/http/v1"
	"bizledger/internal/infrastructure/storage/postgres"
	"bizledger/internal/infrastructure/storage/postgres/catalog_repo"
	"bizledger/internal/infrastructure/storage/postgres/document_repo"
	"bizledger/internal/infrastructure/storage/postgres/ledger_repo"
	"bizledger/internal/infrastructure/storage/postgres/register_repo"
	"bizledger/pkg/logger"
	"bizledger/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()
	log.Info("starting bizledger server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Auth ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))
	apiKeys, err := auth.ParseAPIKeySet(getEnv("API_KEYS", ""))
	if err != nil {
		log.Fatalw("failed to parse API keys", "error", err)
	}

	// --- Repositories ---
	accountRepo := ledger_repo.NewAccountRepo(txManager)
	legRepo := ledger_repo.NewLegRepo(txManager)
	stockRepo := register_repo.NewStockRepo(txManager)
	saleRepo := document_repo.NewSaleRepo(txManager)
	purchaseRepo := document_repo.NewPurchaseRepo(txManager)
	paymentRepo := document_repo.NewPaymentRepo(txManager)
	quotationRepo := document_repo.NewQuotationRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	warehouseRepo := catalog_repo.NewWarehouseRepo(txManager)

	// --- Domain services ---
	numbering := numerator.New(postgres.NewNumberingQuerier(txManager))

	registry := accounts.NewRegistry(accountRepo, txManager)
	poster := ledger.NewPoster(legRepo, accountRepo, txManager)
	reader := ledger.NewReader(legRepo, accountRepo)

	stockEngine := inventory.NewEngine(stockRepo, txManager)
	stockReader := inventory.NewStockLedger(stockRepo)

	saleService := sale.NewService(saleRepo, numbering, txManager)
	purchaseService := purchase.NewService(purchaseRepo, numbering, txManager)
	paymentService := payment.NewService(paymentRepo, numbering, txManager)

	auditLog, err := postgres.NewPostingAuditLog(txManager)
	if err != nil {
		log.Fatalw("failed to initialize posting audit log", "error", err)
	}

	accountCfg := posting.DefaultAccountConfig()
	postingEngine, err := posting.NewEngine(
		registry,
		poster,
		stockEngine,
		saleRepo,
		purchaseRepo,
		paymentRepo,
		auditLog,
		txManager,
		accountCfg,
	)
	if err != nil {
		log.Fatalw("failed to initialize posting engine", "error", err)
	}

	quotationService := quotation.NewService(quotationRepo, saleService, postingEngine, numbering, txManager)

	productService := product.NewService(productRepo, txManager)
	warehouseService := warehouse.NewService(warehouseRepo, txManager)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:        pool,
		Logger:      log,
		JWTService:  jwtService,
		APIKeys:     apiKeys,
		Accounts:    registry,
		Poster:      poster,
		Reader:      reader,
		StockEngine: stockEngine,
		StockReader: stockReader,
		Posting:     postingEngine,
		Sales:       saleService,
		Purchases:   purchaseService,
		Payments:    paymentService,
		Quotations:  quotationService,
		Products:    productService,
		Warehouses:  warehouseService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
