package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/domain/documents/payment"
	"bizledger/internal/infrastructure/storage/postgres"
)

const paymentsTable = "doc_payments"

var paymentColumns = []string{
	"id", "version", "number", "date", "posted", "comment",
	"direction", "counterparty_name", "amount",
	"reference_type", "reference_id", "ledger_set_id",
	"created_at", "updated_at", "created_by", "updated_by",
}

// PaymentRepo implements payment.Repository.
type PaymentRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewPaymentRepo creates a new payment repository.
func NewPaymentRepo(txManager *postgres.TxManager) *PaymentRepo {
	return &PaymentRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the document.
func (r *PaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	q := r.builder.Insert(paymentsTable).
		Columns(paymentColumns...).
		Values(
			p.ID, p.Version, p.Number, p.Date, p.Posted, p.Comment,
			p.Direction, p.CounterpartyName, p.Amount,
			p.ReferenceType, p.ReferenceID, p.LedgerSetID,
			p.CreatedAt, p.UpdatedAt, p.CreatedBy, p.UpdatedBy,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// Update persists changes with optimistic locking.
func (r *PaymentRepo) Update(ctx context.Context, p *payment.Payment) error {
	q := r.builder.Update(paymentsTable).
		Set("version", p.Version+1).
		Set("posted", p.Posted).
		Set("comment", p.Comment).
		Set("ledger_set_id", p.LedgerSetID).
		Set("updated_at", p.UpdatedAt).
		Set("updated_by", p.UpdatedBy).
		Where(squirrel.Eq{
			"id":      p.ID,
			"version": p.Version,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("payment", p.ID.String())
	}

	p.SetVersion(p.Version + 1)
	return nil
}

// GetByID returns one payment.
func (r *PaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*payment.Payment, error) {
	return r.getOne(ctx, paymentID, false)
}

// GetForUpdate returns the payment with a row lock for recording.
func (r *PaymentRepo) GetForUpdate(ctx context.Context, paymentID id.ID) (*payment.Payment, error) {
	return r.getOne(ctx, paymentID, true)
}

func (r *PaymentRepo) getOne(ctx context.Context, paymentID id.ID, forUpdate bool) (*payment.Payment, error) {
	q := r.builder.Select(paymentColumns...).
		From(paymentsTable).
		Where(squirrel.Eq{"id": paymentID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p payment.Payment
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("payment", paymentID.String())
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

// List returns payments matching the filter, newest first.
func (r *PaymentRepo) List(ctx context.Context, filter payment.ListFilter) ([]payment.Payment, error) {
	q := r.builder.Select(paymentColumns...).From(paymentsTable)

	if filter.Direction != nil {
		q = q.Where(squirrel.Eq{"direction": *filter.Direction})
	}
	if filter.Posted != nil {
		q = q.Where(squirrel.Eq{"posted": *filter.Posted})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.ToDate})
	}

	q = q.OrderBy("date DESC", "number DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var list []payment.Payment
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &list, sql, args...); err != nil {
		return nil, fmt.Errorf("select payments: %w", err)
	}
	return list, nil
}

// Ensure interface compliance.
var _ payment.Repository = (*PaymentRepo)(nil)
