package purchase

import (
	"context"
	"fmt"
	"time"

	"bizledger/internal/core/id"
	"bizledger/internal/core/tx"
	"bizledger/internal/core/types"
	"bizledger/pkg/logger"
	"bizledger/pkg/numerator"
)

// Numbering hands out document numbers. Satisfied by numerator.Service.
type Numbering interface {
	GetNextNumber(ctx context.Context, cfg numerator.Config, opts *numerator.Options, period time.Time) (string, error)
}

// Service manages purchase document drafts. Receipt lives in the posting
// engine.
type Service struct {
	repo      Repository
	numbering Numbering
	txManager tx.Manager
}

// NewService creates a new purchase document service.
func NewService(repo Repository, numbering Numbering, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		numbering: numbering,
		txManager: txManager,
	}
}

// LineInput holds the fields for one purchase line.
type LineInput struct {
	ProductID  id.ID
	Batch      string
	ExpiryDate *time.Time
	Quantity   types.Quantity
	UnitCost   types.MinorUnits
}

// CreateInput holds the fields for a new draft purchase.
type CreateInput struct {
	SupplierName  string
	WarehouseID   id.ID
	PaymentMethod PaymentMethod
	Date          *time.Time
	Comment       string
	Lines         []LineInput
}

// Create builds a numbered draft purchase document.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Purchase, error) {
	doc := NewPurchase(in.SupplierName, in.WarehouseID, in.PaymentMethod)
	doc.Comment = in.Comment
	if in.Date != nil {
		doc.Date = *in.Date
	}
	for i, line := range in.Lines {
		doc.Lines = append(doc.Lines, Line{
			LineID:     id.New(),
			PurchaseID: doc.ID,
			LineNo:     i + 1,
			ProductID:  line.ProductID,
			Batch:      line.Batch,
			ExpiryDate: line.ExpiryDate,
			Quantity:   line.Quantity,
			UnitCost:   line.UnitCost,
		})
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numbering.GetNextNumber(ctx, numerator.DefaultConfig("PU"), nil, doc.Date)
		if err != nil {
			return fmt.Errorf("next number: %w", err)
		}
		doc.Number = number
		return s.repo.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase created",
		"purchase_id", doc.ID,
		"number", doc.Number,
		"total", doc.Total().String(),
	)
	return doc, nil
}

// GetByID returns the purchase with its lines.
func (s *Service) GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	return s.repo.GetByID(ctx, purchaseID)
}

// List returns purchase documents matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Purchase, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}
