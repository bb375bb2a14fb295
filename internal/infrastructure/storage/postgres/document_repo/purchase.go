package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/domain/documents/purchase"
	"bizledger/internal/infrastructure/storage/postgres"
)

const (
	purchasesTable     = "doc_purchases"
	purchaseLinesTable = "doc_purchase_lines"
)

var purchaseColumns = []string{
	"id", "version", "number", "date", "posted", "comment",
	"supplier_name", "warehouse_id", "payment_method", "ledger_set_id",
	"created_at", "updated_at", "created_by", "updated_by",
}

var purchaseLineColumns = []string{
	"line_id", "purchase_id", "line_no", "product_id", "batch",
	"expiry_date", "quantity", "unit_cost",
}

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewPurchaseRepo creates a new purchase repository.
func NewPurchaseRepo(txManager *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the document with its lines.
func (r *PurchaseRepo) Create(ctx context.Context, p *purchase.Purchase) error {
	q := r.builder.Insert(purchasesTable).
		Columns(purchaseColumns...).
		Values(
			p.ID, p.Version, p.Number, p.Date, p.Posted, p.Comment,
			p.SupplierName, p.WarehouseID, p.PaymentMethod, p.LedgerSetID,
			p.CreatedAt, p.UpdatedAt, p.CreatedBy, p.UpdatedBy,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}

	return r.insertLines(ctx, p)
}

// Update persists header changes with optimistic locking.
func (r *PurchaseRepo) Update(ctx context.Context, p *purchase.Purchase) error {
	q := r.builder.Update(purchasesTable).
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
		return fmt.Errorf("update purchase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("purchase", p.ID.String())
	}

	p.SetVersion(p.Version + 1)
	return nil
}

// GetByID returns the document with lines loaded.
func (r *PurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	return r.getOne(ctx, purchaseID, false)
}

// GetForUpdate returns the document with a row lock for receipt.
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	return r.getOne(ctx, purchaseID, true)
}

func (r *PurchaseRepo) getOne(ctx context.Context, purchaseID id.ID, forUpdate bool) (*purchase.Purchase, error) {
	q := r.builder.Select(purchaseColumns...).
		From(purchasesTable).
		Where(squirrel.Eq{"id": purchaseID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p purchase.Purchase
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase", purchaseID.String())
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}

	lines, err := r.getLines(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	p.Lines = lines
	return &p, nil
}

// List returns documents matching the filter, newest first, without lines.
func (r *PurchaseRepo) List(ctx context.Context, filter purchase.ListFilter) ([]purchase.Purchase, error) {
	q := r.builder.Select(purchaseColumns...).From(purchasesTable)

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

	var list []purchase.Purchase
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &list, sql, args...); err != nil {
		return nil, fmt.Errorf("select purchases: %w", err)
	}
	return list, nil
}

func (r *PurchaseRepo) insertLines(ctx context.Context, p *purchase.Purchase) error {
	if len(p.Lines) == 0 {
		return nil
	}

	q := r.builder.Insert(purchaseLinesTable).Columns(purchaseLineColumns...)
	for _, l := range p.Lines {
		q = q.Values(
			l.LineID, p.ID, l.LineNo, l.ProductID, l.Batch,
			l.ExpiryDate, l.Quantity, l.UnitCost,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase lines: %w", err)
	}
	return nil
}

func (r *PurchaseRepo) getLines(ctx context.Context, purchaseID id.ID) ([]purchase.Line, error) {
	q := r.builder.Select(purchaseLineColumns...).
		From(purchaseLinesTable).
		Where(squirrel.Eq{"purchase_id": purchaseID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchase.Line
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get purchase lines: %w", err)
	}
	return lines, nil
}

// Ensure interface compliance.
var _ purchase.Repository = (*PurchaseRepo)(nil)
