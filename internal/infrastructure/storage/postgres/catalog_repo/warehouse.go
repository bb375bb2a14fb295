package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/domain/catalogs/warehouse"
	"bizledger/internal/infrastructure/storage/postgres"
)

const warehousesTable = "cat_warehouses"

var warehouseColumns = []string{
	"id", "version", "code", "name", "address", "active",
	"created_at", "updated_at",
}

// WarehouseRepo implements warehouse.Repository.
type WarehouseRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewWarehouseRepo creates a new warehouse repository.
func NewWarehouseRepo(txManager *postgres.TxManager) *WarehouseRepo {
	return &WarehouseRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new warehouse.
func (r *WarehouseRepo) Create(ctx context.Context, w *warehouse.Warehouse) error {
	q := r.builder.Insert(warehousesTable).
		Columns(warehouseColumns...).
		Values(
			w.ID, w.Version, w.Code, w.Name, w.Address, w.Active,
			w.CreatedAt, w.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

// Update modifies an existing warehouse with optimistic locking.
func (r *WarehouseRepo) Update(ctx context.Context, w *warehouse.Warehouse) error {
	q := r.builder.Update(warehousesTable).
		Set("version", w.Version+1).
		Set("name", w.Name).
		Set("address", w.Address).
		Set("active", w.Active).
		Set("updated_at", w.UpdatedAt).
		Where(squirrel.Eq{
			"id":      w.ID,
			"version": w.Version,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update warehouse: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("warehouse", w.ID.String())
	}

	w.SetVersion(w.Version + 1)
	return nil
}

// GetByID retrieves a warehouse by ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, warehouseID id.ID) (*warehouse.Warehouse, error) {
	return r.getOne(ctx, squirrel.Eq{"id": warehouseID}, warehouseID.String())
}

// GetByCode retrieves a warehouse by its unique code.
func (r *WarehouseRepo) GetByCode(ctx context.Context, code string) (*warehouse.Warehouse, error) {
	return r.getOne(ctx, squirrel.Eq{"code": code}, code)
}

func (r *WarehouseRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*warehouse.Warehouse, error) {
	q := r.builder.Select(warehouseColumns...).
		From(warehousesTable).
		Where(where).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var w warehouse.Warehouse
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &w, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("warehouse", key)
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

// List returns warehouses ordered by code.
func (r *WarehouseRepo) List(ctx context.Context, activeOnly bool) ([]warehouse.Warehouse, error) {
	q := r.builder.Select(warehouseColumns...).
		From(warehousesTable).
		OrderBy("code")

	if activeOnly {
		q = q.Where(squirrel.Eq{"active": true})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var list []warehouse.Warehouse
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &list, sql, args...); err != nil {
		return nil, fmt.Errorf("select warehouses: %w", err)
	}
	return list, nil
}

// Ensure interface compliance.
var _ warehouse.Repository = (*WarehouseRepo)(nil)
