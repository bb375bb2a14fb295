package warehouse

import (
	"context"

	"bizledger/internal/core/id"
)

// Repository defines persistence operations for warehouses.
type Repository interface {
	Create(ctx context.Context, w *Warehouse) error
	Update(ctx context.Context, w *Warehouse) error
	GetByID(ctx context.Context, warehouseID id.ID) (*Warehouse, error)
	GetByCode(ctx context.Context, code string) (*Warehouse, error)
	List(ctx context.Context, activeOnly bool) ([]Warehouse, error)
}
