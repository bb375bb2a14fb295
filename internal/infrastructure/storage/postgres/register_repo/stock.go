// Package register_repo provides PostgreSQL implementations for the stock
// lot and movement repositories.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
	"bizledger/internal/domain/inventory"
	"bizledger/internal/infrastructure/storage/postgres"
)

const (
	stockLotsTable      = "reg_stock_lots"
	stockMovementsTable = "reg_stock_movements"
)

var lotColumns = []string{
	"id", "version", "product_id", "warehouse_id", "batch", "expiry_date",
	"quantity", "cost_price", "created_at", "updated_at",
}

var movementColumns = []string{
	"line_id", "lot_id", "product_id", "warehouse_id", "batch", "period",
	"record_type", "source", "quantity", "reason",
	"reference_type", "reference_id", "created_by", "created_at",
}

// StockRepo implements inventory.Repository.
type StockRepo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
	builder   squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateLot inserts a new lot.
func (r *StockRepo) CreateLot(ctx context.Context, lot *inventory.Lot) error {
	q := r.builder.Insert(stockLotsTable).
		Columns(lotColumns...).
		Values(
			lot.ID, lot.Version, lot.ProductID, lot.WarehouseID, lot.Batch,
			lot.ExpiryDate, lot.Quantity, lot.CostPrice,
			lot.CreatedAt, lot.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// UpdateLot persists a changed quantity with optimistic locking. Callers
// hold a row lock already; the version check still guards accidental
// lock-free updates.
func (r *StockRepo) UpdateLot(ctx context.Context, lot *inventory.Lot) error {
	q := r.builder.Update(stockLotsTable).
		Set("version", lot.Version+1).
		Set("quantity", lot.Quantity).
		Set("updated_at", lot.UpdatedAt).
		Where(squirrel.Eq{
			"id":      lot.ID,
			"version": lot.Version,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("stock lot", lot.ID.String())
	}

	lot.SetVersion(lot.Version + 1)
	return nil
}

// GetLot returns the lot identified by (product, warehouse, batch).
func (r *StockRepo) GetLot(ctx context.Context, productID, warehouseID id.ID, batch string) (*inventory.Lot, error) {
	q := r.builder.Select(lotColumns...).
		From(stockLotsTable).
		Where(squirrel.Eq{
			"product_id":   productID,
			"warehouse_id": warehouseID,
			"batch":        batch,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lot inventory.Lot
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &lot, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock lot", lotKey(productID, warehouseID, batch))
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return &lot, nil
}

// GetLotForUpdate returns the lot with a row lock for movements.
func (r *StockRepo) GetLotForUpdate(ctx context.Context, productID, warehouseID id.ID, batch string) (*inventory.Lot, error) {
	sql := `
		SELECT id, version, product_id, warehouse_id, batch, expiry_date,
		       quantity, cost_price, created_at, updated_at
		FROM reg_stock_lots
		WHERE product_id = $1 AND warehouse_id = $2 AND batch = $3
		FOR UPDATE
	`

	var lot inventory.Lot
	err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &lot, sql, productID, warehouseID, batch)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock lot", lotKey(productID, warehouseID, batch))
		}
		return nil, fmt.Errorf("get lot for update: %w", err)
	}
	return &lot, nil
}

// PickLotForUpdate selects and locks one lot when no batch was named:
// earliest expiry first (null expiry last), then oldest lot.
func (r *StockRepo) PickLotForUpdate(ctx context.Context, productID, warehouseID id.ID) (*inventory.Lot, error) {
	sql := `
		SELECT id, version, product_id, warehouse_id, batch, expiry_date,
		       quantity, cost_price, created_at, updated_at
		FROM reg_stock_lots
		WHERE product_id = $1 AND warehouse_id = $2 AND quantity > 0
		ORDER BY expiry_date ASC NULLS LAST, created_at ASC
		LIMIT 1
		FOR UPDATE
	`

	var lot inventory.Lot
	err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &lot, sql, productID, warehouseID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock lot", lotKey(productID, warehouseID, ""))
		}
		return nil, fmt.Errorf("pick lot for update: %w", err)
	}
	return &lot, nil
}

// ListLots returns lots matching the filter.
func (r *StockRepo) ListLots(ctx context.Context, filter inventory.LotFilter) ([]inventory.Lot, error) {
	q := r.builder.Select(lotColumns...).From(stockLotsTable)

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"quantity": int64(0)})
	}

	q = q.OrderBy("warehouse_id", "product_id", "batch")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lots []inventory.Lot
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &lots, sql, args...); err != nil {
		return nil, fmt.Errorf("select lots: %w", err)
	}
	return lots, nil
}

// SumOnHand sums quantities of matching lots.
func (r *StockRepo) SumOnHand(ctx context.Context, productID id.ID, warehouseID *id.ID, batch *string) (types.Quantity, error) {
	q := r.builder.Select("COALESCE(SUM(quantity), 0)").
		From(stockLotsTable).
		Where(squirrel.Eq{"product_id": productID})

	if warehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *warehouseID})
	}
	if batch != nil {
		q = q.Where(squirrel.Eq{"batch": *batch})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var totalScaled int64
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&totalScaled)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("sum on hand: %w", err)
	}
	return types.NewQuantityFromInt64Scaled(totalScaled), nil
}

// ListLowStock flags products whose summed quantity is at or below the
// product minimum. With a warehouse scope the sum and the rows are per
// warehouse; otherwise products are summed globally.
func (r *StockRepo) ListLowStock(ctx context.Context, scope inventory.LowStockScope) ([]inventory.LowStockRow, error) {
	var (
		sql  string
		args []any
	)

	if scope.WarehouseID != nil {
		sql = `
			SELECT p.id AS product_id, p.sku, p.name,
			       l.warehouse_id,
			       COALESCE(SUM(l.quantity), 0) AS on_hand,
			       p.min_stock
			FROM cat_products p
			LEFT JOIN reg_stock_lots l ON l.product_id = p.id AND l.warehouse_id = $1
			WHERE p.active AND p.min_stock > 0
			GROUP BY p.id, p.sku, p.name, l.warehouse_id, p.min_stock
			HAVING COALESCE(SUM(l.quantity), 0) <= p.min_stock
			ORDER BY p.sku
		`
		args = []any{*scope.WarehouseID}
	} else {
		sql = `
			SELECT p.id AS product_id, p.sku, p.name,
			       NULL::uuid AS warehouse_id,
			       COALESCE(SUM(l.quantity), 0) AS on_hand,
			       p.min_stock
			FROM cat_products p
			LEFT JOIN reg_stock_lots l ON l.product_id = p.id
			WHERE p.active AND p.min_stock > 0
			GROUP BY p.id, p.sku, p.name, p.min_stock
			HAVING COALESCE(SUM(l.quantity), 0) <= p.min_stock
			ORDER BY p.sku
		`
	}

	var rows []inventory.LowStockRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select low stock: %w", err)
	}
	return rows, nil
}

// ListExpiring returns lots with remaining quantity whose expiry date falls
// at or before the deadline.
func (r *StockRepo) ListExpiring(ctx context.Context, deadline time.Time) ([]inventory.Lot, error) {
	q := r.builder.Select(lotColumns...).
		From(stockLotsTable).
		Where(squirrel.Gt{"quantity": int64(0)}).
		Where(squirrel.NotEq{"expiry_date": nil}).
		Where(squirrel.LtOrEq{"expiry_date": deadline}).
		OrderBy("expiry_date", "warehouse_id", "batch")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lots []inventory.Lot
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &lots, sql, args...); err != nil {
		return nil, fmt.Errorf("select expiring: %w", err)
	}
	return lots, nil
}

// CreateMovements batch inserts movements.
func (r *StockRepo) CreateMovements(ctx context.Context, movements []inventory.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txManager.GetTx(ctx); tx != nil {
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.LineID, m.LotID, m.ProductID, m.WarehouseID, m.Batch,
				m.Period, m.RecordType, m.Source, m.Quantity, m.Reason,
				m.ReferenceType, m.ReferenceID, m.CreatedBy, m.CreatedAt,
			})
		}
		if _, err := r.inserter.CopyFromSlice(ctx, stockMovementsTable, movementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(stockMovementsTable).Columns(movementColumns...)
	for _, m := range movements {
		q = q.Values(
			m.LineID, m.LotID, m.ProductID, m.WarehouseID, m.Batch,
			m.Period, m.RecordType, m.Source, m.Quantity, m.Reason,
			m.ReferenceType, m.ReferenceID, m.CreatedBy, m.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

// ListMovements returns movement history matching the filter, newest first.
func (r *StockRepo) ListMovements(ctx context.Context, filter inventory.MovementFilter) ([]inventory.Movement, error) {
	q := r.builder.Select(movementColumns...).From(stockMovementsTable)

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.Source != nil {
		q = q.Where(squirrel.Eq{"source": *filter.Source})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"period": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"period": *filter.ToDate})
	}

	q = q.OrderBy("period DESC", "created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []inventory.Movement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return movements, nil
}

func lotKey(productID, warehouseID id.ID, batch string) string {
	if batch == "" {
		return fmt.Sprintf("%s@%s", productID, warehouseID)
	}
	return fmt.Sprintf("%s@%s/%s", productID, warehouseID, batch)
}

// Ensure interface compliance.
var _ inventory.Repository = (*StockRepo)(nil)
