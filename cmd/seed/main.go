// Package main provides a CLI tool for seeding the database with initial data.
//
// It creates the chart of accounts the document posting engine expects, and
// optionally (SEED_DEMO_DATA=true) demo warehouses, products and a small set
// of posted documents.
package main

import (
	"context"
	"fmt"
	"os"

	"bizledger/internal/core/apperror"
	appctx "bizledger/internal/core/context"
	"bizledger/internal/core/types"
	"bizledger/internal/domain/accounts"
	"bizledger/internal/domain/catalogs/product"
	"bizledger/internal/domain/catalogs/warehouse"
	"bizledger/internal/domain/documents/payment"
	"bizledger/internal/domain/documents/purchase"
	"bizledger/internal/domain/documents/sale"
	"bizledger/internal/domain/inventory"
	"bizledger/internal/domain/ledger"
	"bizledger/internal/domain/posting"
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
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:    "svc:seed",
		IsService: true,
	})

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	registry := accounts.NewRegistry(ledger_repo.NewAccountRepo(txManager), txManager)

	if err := seedChartOfAccounts(ctx, registry, log); err != nil {
		log.Fatalw("failed to seed chart of accounts", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		warehouses := warehouse.NewService(catalog_repo.NewWarehouseRepo(txManager), txManager)
		products := product.NewService(catalog_repo.NewProductRepo(txManager), txManager)

		if err := seedDemoWarehouses(ctx, warehouses, log); err != nil {
			log.Fatalw("failed to seed demo warehouses", "error", err)
		}
		if err := seedDemoProducts(ctx, products, log); err != nil {
			log.Fatalw("failed to seed demo products", "error", err)
		}
		if err := seedDemoDocuments(ctx, txManager, registry, warehouses, products, log); err != nil {
			log.Fatalw("failed to seed demo documents", "error", err)
		}
	}

	log.Info("seeding completed")
}

// seedChartOfAccounts creates the accounts document posting resolves by code.
// Existing accounts are left untouched, so the seed is safe to re-run.
func seedChartOfAccounts(ctx context.Context, registry *accounts.Registry, log *logger.Logger) error {
	chart := []accounts.CreateInput{
		{Code: "1000", Name: "Cash", Type: accounts.TypeAsset, SubType: "cash"},
		{Code: "1100", Name: "Accounts Receivable", Type: accounts.TypeAsset, SubType: "receivable"},
		{Code: "1200", Name: "Inventory", Type: accounts.TypeAsset, SubType: "inventory"},
		{Code: "2100", Name: "Accounts Payable", Type: accounts.TypeLiability, SubType: "payable"},
		{Code: "3000", Name: "Owner's Equity", Type: accounts.TypeEquity},
		{Code: "4000", Name: "Sales Revenue", Type: accounts.TypeIncome},
		{Code: "5000", Name: "Cost of Goods Sold", Type: accounts.TypeExpense},
		{Code: "5100", Name: "Operating Expenses", Type: accounts.TypeExpense},
	}

	for _, in := range chart {
		existing, err := registry.GetByCode(ctx, in.Code)
		if err != nil && !apperror.IsNotFound(err) {
			return fmt.Errorf("check account %s: %w", in.Code, err)
		}
		if existing != nil {
			log.Infow("account already exists, skipping", "code", in.Code)
			continue
		}

		account, err := registry.Create(ctx, in)
		if err != nil {
			return fmt.Errorf("create account %s: %w", in.Code, err)
		}
		log.Infow("account created", "code", account.Code, "name", account.Name)
	}

	return nil
}

func seedDemoWarehouses(ctx context.Context, svc *warehouse.Service, log *logger.Logger) error {
	demo := []warehouse.CreateInput{
		{Code: "MAIN", Name: "Main Warehouse", Address: "12 Industrial Rd"},
		{Code: "STORE", Name: "Storefront", Address: "4 Market Sq"},
	}

	for _, in := range demo {
		existing, err := svc.GetByCode(ctx, in.Code)
		if err != nil && !apperror.IsNotFound(err) {
			return fmt.Errorf("check warehouse %s: %w", in.Code, err)
		}
		if existing != nil {
			log.Infow("warehouse already exists, skipping", "code", in.Code)
			continue
		}

		w, err := svc.Create(ctx, in)
		if err != nil {
			return fmt.Errorf("create warehouse %s: %w", in.Code, err)
		}
		log.Infow("warehouse created", "code", w.Code, "name", w.Name)
	}

	return nil
}

func seedDemoProducts(ctx context.Context, svc *product.Service, log *logger.Logger) error {
	demo := []product.CreateInput{
		{SKU: "WID-001", Name: "Widget, standard", Unit: "pcs", MinStock: types.NewQuantityFromFloat64(20)},
		{SKU: "WID-002", Name: "Widget, heavy duty", Unit: "pcs", MinStock: types.NewQuantityFromFloat64(10)},
		{SKU: "LUB-500", Name: "Machine lubricant 500ml", Unit: "btl", MinStock: types.NewQuantityFromFloat64(5)},
		{SKU: "CBL-CAT6", Name: "Network cable Cat6", Unit: "m", MinStock: types.NewQuantityFromFloat64(100)},
	}

	for _, in := range demo {
		existing, err := svc.GetBySKU(ctx, in.SKU)
		if err != nil && !apperror.IsNotFound(err) {
			return fmt.Errorf("check product %s: %w", in.SKU, err)
		}
		if existing != nil {
			log.Infow("product already exists, skipping", "sku", in.SKU)
			continue
		}

		p, err := svc.Create(ctx, in)
		if err != nil {
			return fmt.Errorf("create product %s: %w", in.SKU, err)
		}
		log.Infow("product created", "sku", p.SKU, "name", p.Name)
	}

	return nil
}

// seedDemoDocuments runs one purchase receipt, one sale finalization and one
// incoming payment through the posting engine, leaving stock, ledger legs and
// the audit log populated. Skipped when any purchase already exists.
func seedDemoDocuments(
	ctx context.Context,
	txManager *postgres.TxManager,
	registry *accounts.Registry,
	warehouses *warehouse.Service,
	products *product.Service,
	log *logger.Logger,
) error {
	saleRepo := document_repo.NewSaleRepo(txManager)
	purchaseRepo := document_repo.NewPurchaseRepo(txManager)
	paymentRepo := document_repo.NewPaymentRepo(txManager)

	numbering := numerator.New(postgres.NewNumberingQuerier(txManager))
	purchases := purchase.NewService(purchaseRepo, numbering, txManager)
	sales := sale.NewService(saleRepo, numbering, txManager)
	payments := payment.NewService(paymentRepo, numbering, txManager)

	existing, err := purchases.List(ctx, purchase.ListFilter{Limit: 1})
	if err != nil {
		return fmt.Errorf("check purchases: %w", err)
	}
	if len(existing) > 0 {
		log.Info("documents already exist, skipping demo documents")
		return nil
	}

	accountRepo := ledger_repo.NewAccountRepo(txManager)
	poster := ledger.NewPoster(ledger_repo.NewLegRepo(txManager), accountRepo, txManager)
	stockEngine := inventory.NewEngine(register_repo.NewStockRepo(txManager), txManager)

	auditLog, err := postgres.NewPostingAuditLog(txManager)
	if err != nil {
		return fmt.Errorf("init audit log: %w", err)
	}

	engine, err := posting.NewEngine(
		registry, poster, stockEngine,
		saleRepo, purchaseRepo, paymentRepo,
		auditLog, txManager, posting.DefaultAccountConfig(),
	)
	if err != nil {
		return fmt.Errorf("init posting engine: %w", err)
	}

	wh, err := warehouses.GetByCode(ctx, "MAIN")
	if err != nil {
		return fmt.Errorf("get warehouse MAIN: %w", err)
	}
	widget, err := products.GetBySKU(ctx, "WID-001")
	if err != nil {
		return fmt.Errorf("get product WID-001: %w", err)
	}

	po, err := purchases.Create(ctx, purchase.CreateInput{
		SupplierName:  "Acme Supply Co",
		WarehouseID:   wh.ID,
		PaymentMethod: purchase.PaymentOnAccount,
		Comment:       "demo stock intake",
		Lines: []purchase.LineInput{
			{
				ProductID: widget.ID,
				Batch:     "DEMO-1",
				Quantity:  types.NewQuantityFromFloat64(50),
				UnitCost:  types.MinorUnits(6_00),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create purchase: %w", err)
	}
	if _, err := engine.ReceivePurchase(ctx, po.ID); err != nil {
		return fmt.Errorf("receive purchase %s: %w", po.Number, err)
	}
	log.Infow("demo purchase received", "number", po.Number)

	so, err := sales.Create(ctx, sale.CreateInput{
		CustomerName:  "Northwind Trading",
		WarehouseID:   wh.ID,
		PaymentMethod: sale.PaymentOnAccount,
		Comment:       "demo sale",
		Lines: []sale.LineInput{
			{
				ProductID: widget.ID,
				Quantity:  types.NewQuantityFromFloat64(10),
				UnitPrice: types.MinorUnits(15_00),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create sale: %w", err)
	}
	posted, err := engine.FinalizeSale(ctx, so.ID)
	if err != nil {
		return fmt.Errorf("finalize sale %s: %w", so.Number, err)
	}
	log.Infow("demo sale finalized", "number", so.Number, "total", posted.Total().String())

	pay, err := payments.Create(ctx, payment.CreateInput{
		Direction:        payment.DirectionIncoming,
		CounterpartyName: "Northwind Trading",
		Amount:           posted.Total(),
		ReferenceType:    "sale",
		ReferenceID:      &posted.ID,
	})
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	if _, err := engine.RecordPayment(ctx, pay.ID); err != nil {
		return fmt.Errorf("record payment %s: %w", pay.Number, err)
	}
	log.Infow("demo payment recorded", "number", pay.Number)

	return nil
}
