package warehouse

import (
	"context"
	"fmt"
	"time"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/core/tx"
	"bizledger/pkg/logger"
)

// Service manages the warehouse catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new warehouse service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// CreateInput holds the fields for a new warehouse.
type CreateInput struct {
	Code    string
	Name    string
	Address string
}

// Create registers a new warehouse. Code must be unique.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Warehouse, error) {
	w := NewWarehouse(in.Code, in.Name)
	w.Address = in.Address
	if err := w.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByCode(ctx, w.Code)
		if err != nil && !apperror.IsNotFound(err) {
			return fmt.Errorf("check code: %w", err)
		}
		if existing != nil {
			return apperror.NewDuplicate("warehouse", "code", w.Code)
		}
		return s.repo.Create(ctx, w)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "warehouse created", "warehouse_id", w.ID, "code", w.Code)
	return w, nil
}

// UpdateInput holds the mutable warehouse fields. Nil means unchanged.
type UpdateInput struct {
	Name    *string
	Address *string
	Active  *bool
}

// Update applies the changed fields.
func (s *Service) Update(ctx context.Context, warehouseID id.ID, in UpdateInput) (*Warehouse, error) {
	var w *Warehouse
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		w, err = s.repo.GetByID(ctx, warehouseID)
		if err != nil {
			return err
		}
		if in.Name != nil {
			w.Name = *in.Name
		}
		if in.Address != nil {
			w.Address = *in.Address
		}
		if in.Active != nil {
			w.Active = *in.Active
		}
		if err := w.Validate(ctx); err != nil {
			return err
		}
		w.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// GetByID returns one warehouse.
func (s *Service) GetByID(ctx context.Context, warehouseID id.ID) (*Warehouse, error) {
	return s.repo.GetByID(ctx, warehouseID)
}

// GetByCode returns one warehouse by its code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Warehouse, error) {
	return s.repo.GetByCode(ctx, code)
}

// List returns warehouses, optionally active only.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]Warehouse, error) {
	return s.repo.List(ctx, activeOnly)
}
