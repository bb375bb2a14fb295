package quotation

import (
	"context"
	"fmt"
	"time"

	"bizledger/internal/core/apperror"
	appctx "bizledger/internal/core/context"
	"bizledger/internal/core/id"
	"bizledger/internal/core/tx"
	"bizledger/internal/core/types"
	"bizledger/internal/domain/documents/sale"
	"bizledger/internal/domain/posting"
	"bizledger/pkg/logger"
	"bizledger/pkg/numerator"
)

// Numbering hands out document numbers. Satisfied by numerator.Service.
type Numbering interface {
	GetNextNumber(ctx context.Context, cfg numerator.Config, opts *numerator.Options, period time.Time) (string, error)
}

// Service manages the quotation lifecycle, including the one-shot
// conversion into a finalized sale.
type Service struct {
	repo      Repository
	sales     *sale.Service
	engine    *posting.Engine
	numbering Numbering
	txManager tx.Manager

	// now is swapped in tests to pin expiry derivation
	now func() time.Time
}

// NewService creates a new quotation service.
func NewService(repo Repository, sales *sale.Service, engine *posting.Engine, numbering Numbering, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		sales:     sales,
		engine:    engine,
		numbering: numbering,
		txManager: txManager,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// LineInput holds the fields for one quoted line.
type LineInput struct {
	ProductID id.ID
	Batch     *string
	Quantity  types.Quantity
	UnitPrice types.MinorUnits
	Discount  types.Discount
}

// CreateInput holds the fields for a new draft quotation.
type CreateInput struct {
	CustomerName string
	WarehouseID  id.ID
	ValidUntil   time.Time
	Comment      string
	Lines        []LineInput
}

// Create builds a numbered draft quotation.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Quotation, error) {
	q := NewQuotation(in.CustomerName, in.WarehouseID, in.ValidUntil)
	q.Comment = in.Comment
	for i, line := range in.Lines {
		q.Lines = append(q.Lines, Line{
			LineID:      id.New(),
			QuotationID: q.ID,
			LineNo:      i + 1,
			ProductID:   line.ProductID,
			Batch:       line.Batch,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Discount:    line.Discount,
		})
	}
	if err := q.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numbering.GetNextNumber(ctx, numerator.DefaultConfig("QT"), nil, q.Date)
		if err != nil {
			return fmt.Errorf("next number: %w", err)
		}
		q.Number = number
		return s.repo.Create(ctx, q)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "quotation created", "quotation_id", q.ID, "number", q.Number)
	return q, nil
}

// Send marks a draft quotation as sent to the customer.
func (s *Service) Send(ctx context.Context, quotationID id.ID) (*Quotation, error) {
	return s.transition(ctx, quotationID, StatusDraft, StatusSent)
}

// Approve marks a sent quotation as approved by the customer.
func (s *Service) Approve(ctx context.Context, quotationID id.ID) (*Quotation, error) {
	return s.transition(ctx, quotationID, StatusSent, StatusApproved)
}

// Reject marks a sent quotation as rejected. Rejection is final.
func (s *Service) Reject(ctx context.Context, quotationID id.ID) (*Quotation, error) {
	return s.transition(ctx, quotationID, StatusSent, StatusRejected)
}

func (s *Service) transition(ctx context.Context, quotationID id.ID, from, to Status) (*Quotation, error) {
	var q *Quotation
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		q, err = s.repo.GetForUpdate(ctx, quotationID)
		if err != nil {
			return err
		}
		effective := q.EffectiveStatus(s.now())
		if effective != from {
			return apperror.NewBusinessRule(
				apperror.CodeBusinessRule,
				fmt.Sprintf("Quotation must be %s to become %s.", from, to),
			).WithDetail("status", string(effective))
		}
		q.Status = to
		q.UpdatedBy = appctx.GetUserID(ctx)
		q.Touch()
		return s.repo.Update(ctx, q)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "quotation status changed",
		"quotation_id", q.ID,
		"number", q.Number,
		"status", string(q.Status),
	)
	return q, nil
}

// ConvertInput tunes the sale produced by conversion.
type ConvertInput struct {
	PaymentMethod sale.PaymentMethod
}

// ConvertToSale is the terminal, one-shot transition of an approved
// quotation: it creates a sale from the quoted lines, finalizes it through
// the posting engine, and records the sale reference exactly once. A second
// call fails with AlreadyConvertedError and has no side effects. An
// approved quotation past its valid_until reads as expired and can no
// longer convert.
func (s *Service) ConvertToSale(ctx context.Context, quotationID id.ID, in ConvertInput) (*sale.Sale, error) {
	if in.PaymentMethod == "" {
		in.PaymentMethod = sale.PaymentOnAccount
	}

	var (
		q   *Quotation
		doc *sale.Sale
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		q, err = s.repo.GetForUpdate(ctx, quotationID)
		if err != nil {
			return err
		}
		if q.Converted() {
			return apperror.NewAlreadyConverted(q.ID.String(), q.ConvertedToSaleID.String())
		}
		effective := q.EffectiveStatus(s.now())
		if effective != StatusApproved {
			return apperror.NewBusinessRule(
				apperror.CodeBusinessRule,
				"Only approved quotations can be converted to a sale.",
			).WithDetail("status", string(effective))
		}

		lines := make([]sale.LineInput, 0, len(q.Lines))
		for i := range q.Lines {
			l := &q.Lines[i]
			lines = append(lines, sale.LineInput{
				ProductID: l.ProductID,
				Batch:     l.Batch,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
				Discount:  l.Discount,
			})
		}
		doc, err = s.sales.Create(ctx, sale.CreateInput{
			CustomerName:  q.CustomerName,
			WarehouseID:   q.WarehouseID,
			PaymentMethod: in.PaymentMethod,
			Comment:       fmt.Sprintf("Converted from quotation %s", q.Number),
			Lines:         lines,
		})
		if err != nil {
			return err
		}

		doc, err = s.engine.FinalizeSale(ctx, doc.ID)
		if err != nil {
			return err
		}

		q.ConvertedToSaleID = &doc.ID
		q.UpdatedBy = appctx.GetUserID(ctx)
		q.Touch()
		return s.repo.Update(ctx, q)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "quotation converted",
		"quotation_id", q.ID,
		"number", q.Number,
		"sale_id", doc.ID,
		"sale_number", doc.Number,
	)
	return doc, nil
}

// GetByID returns the quotation with its lines. Status in the result is
// the derived, read-time status.
func (s *Service) GetByID(ctx context.Context, quotationID id.ID) (*Quotation, error) {
	q, err := s.repo.GetByID(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	q.Status = q.EffectiveStatus(s.now())
	return q, nil
}

// List returns quotations matching the filter with derived statuses.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Quotation, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range list {
		list[i].Status = list[i].EffectiveStatus(now)
	}
	return list, nil
}
