package product

import (
	"context"
	"fmt"
	"time"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/core/tx"
	"bizledger/internal/core/types"
	"bizledger/pkg/logger"
)

// Service manages the product catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new product service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// CreateInput holds the fields for a new product.
type CreateInput struct {
	SKU      string
	Name     string
	Unit     string
	MinStock types.Quantity
}

// Create registers a new product. SKU must be unique.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	p := NewProduct(in.SKU, in.Name)
	p.Unit = in.Unit
	p.MinStock = in.MinStock
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetBySKU(ctx, p.SKU)
		if err != nil && !apperror.IsNotFound(err) {
			return fmt.Errorf("check sku: %w", err)
		}
		if existing != nil {
			return apperror.NewDuplicate("product", "sku", p.SKU)
		}
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "product created", "product_id", p.ID, "sku", p.SKU)
	return p, nil
}

// UpdateInput holds the mutable product fields. Nil means unchanged.
type UpdateInput struct {
	Name     *string
	Unit     *string
	MinStock *types.Quantity
	Active   *bool
}

// Update applies the changed fields.
func (s *Service) Update(ctx context.Context, productID id.ID, in UpdateInput) (*Product, error) {
	var p *Product
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.repo.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if in.Name != nil {
			p.Name = *in.Name
		}
		if in.Unit != nil {
			p.Unit = *in.Unit
		}
		if in.MinStock != nil {
			p.MinStock = *in.MinStock
		}
		if in.Active != nil {
			p.Active = *in.Active
		}
		if err := p.Validate(ctx); err != nil {
			return err
		}
		p.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID returns one product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// GetBySKU returns one product by its SKU.
func (s *Service) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	return s.repo.GetBySKU(ctx, sku)
}

// List returns products, optionally active only.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]Product, error) {
	return s.repo.List(ctx, activeOnly)
}
