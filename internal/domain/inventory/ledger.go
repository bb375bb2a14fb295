package inventory

import (
	"context"
	"fmt"
	"time"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
)

// StockLedger is the read side of the stock engine: on-hand quantities,
// lot listings, movement history and the operational reports.
type StockLedger struct {
	repo Repository
}

// NewStockLedger creates a new stock query service.
func NewStockLedger(repo Repository) *StockLedger {
	return &StockLedger{repo: repo}
}

// OnHandScope selects what to sum: a warehouse, a batch, or everything for
// the product.
type OnHandScope struct {
	WarehouseID *id.ID
	Batch       *string
}

// QuantityOnHand sums lot quantities for a product within the scope.
// A product with no lots has quantity zero, not an error.
func (s *StockLedger) QuantityOnHand(ctx context.Context, productID id.ID, scope OnHandScope) (types.Quantity, error) {
	if id.IsNil(productID) {
		return 0, apperror.NewValidation("product id is required")
	}
	qty, err := s.repo.SumOnHand(ctx, productID, scope.WarehouseID, scope.Batch)
	if err != nil {
		return 0, fmt.Errorf("sum on hand: %w", err)
	}
	return qty, nil
}

// Lots lists lots matching the filter, zero-quantity lots included unless
// the filter excludes them.
func (s *StockLedger) Lots(ctx context.Context, filter LotFilter) ([]Lot, error) {
	lots, err := s.repo.ListLots(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return lots, nil
}

// LowStock reports products whose summed on-hand quantity is at or below
// their configured minimum. Products without a minimum are skipped.
func (s *StockLedger) LowStock(ctx context.Context, scope LowStockScope) ([]LowStockRow, error) {
	rows, err := s.repo.ListLowStock(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return rows, nil
}

// ExpiringWithin lists lots with positive quantity whose expiry date falls
// within the next days from now. Lots without an expiry date never appear.
func (s *StockLedger) ExpiringWithin(ctx context.Context, days int) ([]Lot, error) {
	if days < 0 {
		return nil, apperror.NewValidation("days must not be negative").
			WithDetail("days", days)
	}
	deadline := time.Now().UTC().AddDate(0, 0, days)
	lots, err := s.repo.ListExpiring(ctx, deadline)
	if err != nil {
		return nil, fmt.Errorf("list expiring: %w", err)
	}
	return lots, nil
}

// Movements lists the movement history matching the filter, newest first.
func (s *StockLedger) Movements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	movements, err := s.repo.ListMovements(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movements, nil
}
