package inventory

import (
	"context"
	"time"

	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
)

// Repository defines persistence operations for lots and movements.
type Repository interface {
	// Lot operations

	// CreateLot inserts a new lot
	CreateLot(ctx context.Context, lot *Lot) error

	// UpdateLot persists a changed quantity with optimistic locking
	UpdateLot(ctx context.Context, lot *Lot) error

	// GetLot returns the lot identified by (product, warehouse, batch)
	GetLot(ctx context.Context, productID, warehouseID id.ID, batch string) (*Lot, error)

	// GetLotForUpdate returns the lot with a row lock for movements
	GetLotForUpdate(ctx context.Context, productID, warehouseID id.ID, batch string) (*Lot, error)

	// PickLotForUpdate selects and locks one lot of the product at the
	// warehouse when no batch was named: earliest expiry first (null expiry
	// last), then oldest lot. Returns NotFound when no lot exists.
	PickLotForUpdate(ctx context.Context, productID, warehouseID id.ID) (*Lot, error)

	// ListLots returns lots matching the filter, ordered by warehouse/batch
	ListLots(ctx context.Context, filter LotFilter) ([]Lot, error)

	// Query side

	// SumOnHand sums quantities of matching lots
	SumOnHand(ctx context.Context, productID id.ID, warehouseID *id.ID, batch *string) (types.Quantity, error)

	// ListLowStock flags products whose summed quantity is at or below the
	// product minimum, globally or per warehouse
	ListLowStock(ctx context.Context, scope LowStockScope) ([]LowStockRow, error)

	// ListExpiring returns lots with remaining quantity whose expiry date
	// falls at or before the deadline
	ListExpiring(ctx context.Context, deadline time.Time) ([]Lot, error)

	// Movement audit trail

	// CreateMovements batch inserts movements (inside a transaction)
	CreateMovements(ctx context.Context, movements []Movement) error

	// ListMovements returns movement history matching the filter
	ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error)
}
