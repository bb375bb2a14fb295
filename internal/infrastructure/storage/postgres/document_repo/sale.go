// Package document_repo provides PostgreSQL implementations for business
// document repositories. Documents are a header row plus line rows; headers
// use optimistic locking, posting paths lock the header with FOR UPDATE.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
	"bizledger/internal/domain/documents/sale"
	"bizledger/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "doc_sales"
	saleLinesTable = "doc_sale_lines"
)

var saleColumns = []string{
	"id", "version", "number", "date", "posted", "comment",
	"customer_name", "warehouse_id", "payment_method", "ledger_set_id",
	"created_at", "updated_at", "created_by", "updated_by",
}

// saleLineRow is the stored form of a sale line; the discount variant is
// flattened into kind and value columns.
type saleLineRow struct {
	LineID        id.ID            `db:"line_id"`
	SaleID        id.ID            `db:"sale_id"`
	LineNo        int              `db:"line_no"`
	ProductID     id.ID            `db:"product_id"`
	Batch         *string          `db:"batch"`
	Quantity      types.Quantity   `db:"quantity"`
	UnitPrice     types.MinorUnits `db:"unit_price"`
	DiscountKind  string           `db:"discount_kind"`
	DiscountValue decimal.Decimal  `db:"discount_value"`
}

// SaleRepo implements sale.Repository.
type SaleRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the document with its lines.
func (r *SaleRepo) Create(ctx context.Context, s *sale.Sale) error {
	q := r.builder.Insert(salesTable).
		Columns(saleColumns...).
		Values(
			s.ID, s.Version, s.Number, s.Date, s.Posted, s.Comment,
			s.CustomerName, s.WarehouseID, s.PaymentMethod, s.LedgerSetID,
			s.CreatedAt, s.UpdatedAt, s.CreatedBy, s.UpdatedBy,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	return r.insertLines(ctx, s)
}

// Update persists header changes with optimistic locking.
func (r *SaleRepo) Update(ctx context.Context, s *sale.Sale) error {
	q := r.builder.Update(salesTable).
		Set("version", s.Version+1).
		Set("posted", s.Posted).
		Set("comment", s.Comment).
		Set("ledger_set_id", s.LedgerSetID).
		Set("updated_at", s.UpdatedAt).
		Set("updated_by", s.UpdatedBy).
		Where(squirrel.Eq{
			"id":      s.ID,
			"version": s.Version,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("sale", s.ID.String())
	}

	s.SetVersion(s.Version + 1)
	return nil
}

// GetByID returns the document with lines loaded.
func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	return r.getOne(ctx, saleID, false)
}

// GetForUpdate returns the document with a row lock for finalization.
func (r *SaleRepo) GetForUpdate(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	return r.getOne(ctx, saleID, true)
}

func (r *SaleRepo) getOne(ctx context.Context, saleID id.ID, forUpdate bool) (*sale.Sale, error) {
	q := r.builder.Select(saleColumns...).
		From(salesTable).
		Where(squirrel.Eq{"id": saleID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s sale.Sale
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", saleID.String())
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	lines, err := r.getLines(ctx, saleID)
	if err != nil {
		return nil, err
	}
	s.Lines = lines
	return &s, nil
}

// List returns documents matching the filter, newest first, without lines.
func (r *SaleRepo) List(ctx context.Context, filter sale.ListFilter) ([]sale.Sale, error) {
	q := r.builder.Select(saleColumns...).From(salesTable)

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

	var list []sale.Sale
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &list, sql, args...); err != nil {
		return nil, fmt.Errorf("select sales: %w", err)
	}
	return list, nil
}

func (r *SaleRepo) insertLines(ctx context.Context, s *sale.Sale) error {
	if len(s.Lines) == 0 {
		return nil
	}

	q := r.builder.Insert(saleLinesTable).
		Columns(
			"line_id", "sale_id", "line_no", "product_id", "batch",
			"quantity", "unit_price", "discount_kind", "discount_value",
		)
	for _, l := range s.Lines {
		q = q.Values(
			l.LineID, s.ID, l.LineNo, l.ProductID, l.Batch,
			l.Quantity, l.UnitPrice, string(l.Discount.Kind), l.Discount.Value,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale lines: %w", err)
	}
	return nil
}

func (r *SaleRepo) getLines(ctx context.Context, saleID id.ID) ([]sale.Line, error) {
	q := r.builder.Select(
		"line_id", "sale_id", "line_no", "product_id", "batch",
		"quantity", "unit_price", "discount_kind", "discount_value",
	).From(saleLinesTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []saleLineRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("get sale lines: %w", err)
	}

	lines := make([]sale.Line, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, sale.Line{
			LineID:    row.LineID,
			SaleID:    row.SaleID,
			LineNo:    row.LineNo,
			ProductID: row.ProductID,
			Batch:     row.Batch,
			Quantity:  row.Quantity,
			UnitPrice: row.UnitPrice,
			Discount: types.Discount{
				Kind:  types.DiscountKind(row.DiscountKind),
				Value: row.DiscountValue,
			},
		})
	}
	return lines, nil
}

// Ensure interface compliance.
var _ sale.Repository = (*SaleRepo)(nil)
