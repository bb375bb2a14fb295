package payment

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

// Service manages payment document drafts. Recording lives in the posting
// engine.
type Service struct {
	repo      Repository
	numbering Numbering
	txManager tx.Manager
}

// NewService creates a new payment document service.
func NewService(repo Repository, numbering Numbering, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		numbering: numbering,
		txManager: txManager,
	}
}

// CreateInput holds the fields for a new draft payment.
type CreateInput struct {
	Direction        Direction
	CounterpartyName string
	Amount           types.MinorUnits
	Date             *time.Time
	Comment          string
	ReferenceType    string
	ReferenceID      *id.ID
}

// Create builds a numbered draft payment document.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Payment, error) {
	doc := NewPayment(in.Direction, in.CounterpartyName, in.Amount)
	doc.Comment = in.Comment
	doc.ReferenceType = in.ReferenceType
	doc.ReferenceID = in.ReferenceID
	if in.Date != nil {
		doc.Date = *in.Date
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numbering.GetNextNumber(ctx, numerator.DefaultConfig("PAY"), nil, doc.Date)
		if err != nil {
			return fmt.Errorf("next number: %w", err)
		}
		doc.Number = number
		return s.repo.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment created",
		"payment_id", doc.ID,
		"number", doc.Number,
		"direction", string(doc.Direction),
		"amount", doc.Amount.String(),
	)
	return doc, nil
}

// GetByID returns one payment.
func (s *Service) GetByID(ctx context.Context, paymentID id.ID) (*Payment, error) {
	return s.repo.GetByID(ctx, paymentID)
}

// List returns payment documents matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Payment, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}
