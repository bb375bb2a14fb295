package sale

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

// Service manages sale document drafts. Finalization lives in the posting
// engine.
type Service struct {
	repo      Repository
	numbering Numbering
	txManager tx.Manager
}

// NewService creates a new sale document service.
func NewService(repo Repository, numbering Numbering, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		numbering: numbering,
		txManager: txManager,
	}
}

// LineInput holds the fields for one sale line.
type LineInput struct {
	ProductID id.ID
	Batch     *string
	Quantity  types.Quantity
	UnitPrice types.MinorUnits
	Discount  types.Discount
}

// CreateInput holds the fields for a new draft sale.
type CreateInput struct {
	CustomerName  string
	WarehouseID   id.ID
	PaymentMethod PaymentMethod
	Date          *time.Time
	Comment       string
	Lines         []LineInput
}

// Create builds a numbered draft sale document.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Sale, error) {
	doc := NewSale(in.CustomerName, in.WarehouseID, in.PaymentMethod)
	doc.Comment = in.Comment
	if in.Date != nil {
		doc.Date = *in.Date
	}
	for i, line := range in.Lines {
		doc.Lines = append(doc.Lines, Line{
			LineID:    id.New(),
			SaleID:    doc.ID,
			LineNo:    i + 1,
			ProductID: line.ProductID,
			Batch:     line.Batch,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Discount:  line.Discount,
		})
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numbering.GetNextNumber(ctx, numerator.DefaultConfig("SO"), nil, doc.Date)
		if err != nil {
			return fmt.Errorf("next number: %w", err)
		}
		doc.Number = number
		return s.repo.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale created",
		"sale_id", doc.ID,
		"number", doc.Number,
		"total", doc.Total().String(),
	)
	return doc, nil
}

// GetByID returns the sale with its lines.
func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	return s.repo.GetByID(ctx, saleID)
}

// List returns sale documents matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Sale, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}
