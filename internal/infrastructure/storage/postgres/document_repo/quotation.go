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
	"bizledger/internal/domain/documents/quotation"
	"bizledger/internal/infrastructure/storage/postgres"
)

const (
	quotationsTable     = "doc_quotations"
	quotationLinesTable = "doc_quotation_lines"
)

var quotationColumns = []string{
	"id", "version", "number", "date", "posted", "comment",
	"customer_name", "warehouse_id", "status", "valid_until",
	"converted_to_sale_id",
	"created_at", "updated_at", "created_by", "updated_by",
}

type quotationLineRow struct {
	LineID        id.ID            `db:"line_id"`
	QuotationID   id.ID            `db:"quotation_id"`
	LineNo        int              `db:"line_no"`
	ProductID     id.ID            `db:"product_id"`
	Batch         *string          `db:"batch"`
	Quantity      types.Quantity   `db:"quantity"`
	UnitPrice     types.MinorUnits `db:"unit_price"`
	DiscountKind  string           `db:"discount_kind"`
	DiscountValue decimal.Decimal  `db:"discount_value"`
}

// QuotationRepo implements quotation.Repository.
type QuotationRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewQuotationRepo creates a new quotation repository.
func NewQuotationRepo(txManager *postgres.TxManager) *QuotationRepo {
	return &QuotationRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the quotation with its lines.
func (r *QuotationRepo) Create(ctx context.Context, q *quotation.Quotation) error {
	ins := r.builder.Insert(quotationsTable).
		Columns(quotationColumns...).
		Values(
			q.ID, q.Version, q.Number, q.Date, q.Posted, q.Comment,
			q.CustomerName, q.WarehouseID, q.Status, q.ValidUntil,
			q.ConvertedToSaleID,
			q.CreatedAt, q.UpdatedAt, q.CreatedBy, q.UpdatedBy,
		)

	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert quotation: %w", err)
	}

	return r.insertLines(ctx, q)
}

// Update persists header changes with optimistic locking.
func (r *QuotationRepo) Update(ctx context.Context, q *quotation.Quotation) error {
	upd := r.builder.Update(quotationsTable).
		Set("version", q.Version+1).
		Set("status", q.Status).
		Set("comment", q.Comment).
		Set("valid_until", q.ValidUntil).
		Set("converted_to_sale_id", q.ConvertedToSaleID).
		Set("updated_at", q.UpdatedAt).
		Set("updated_by", q.UpdatedBy).
		Where(squirrel.Eq{
			"id":      q.ID,
			"version": q.Version,
		})

	sql, args, err := upd.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update quotation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("quotation", q.ID.String())
	}

	q.SetVersion(q.Version + 1)
	return nil
}

// GetByID returns the quotation with lines loaded.
func (r *QuotationRepo) GetByID(ctx context.Context, quotationID id.ID) (*quotation.Quotation, error) {
	return r.getOne(ctx, quotationID, false)
}

// GetForUpdate returns the quotation with a row lock.
func (r *QuotationRepo) GetForUpdate(ctx context.Context, quotationID id.ID) (*quotation.Quotation, error) {
	return r.getOne(ctx, quotationID, true)
}

func (r *QuotationRepo) getOne(ctx context.Context, quotationID id.ID, forUpdate bool) (*quotation.Quotation, error) {
	sel := r.builder.Select(quotationColumns...).
		From(quotationsTable).
		Where(squirrel.Eq{"id": quotationID})
	if forUpdate {
		sel = sel.Suffix("FOR UPDATE")
	}

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var q quotation.Quotation
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &q, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("quotation", quotationID.String())
		}
		return nil, fmt.Errorf("get quotation: %w", err)
	}

	lines, err := r.getLines(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	q.Lines = lines
	return &q, nil
}

// List returns quotations matching the filter, newest first, without lines.
// Status filtering is on the stored status; derived expiry is applied by the
// service.
func (r *QuotationRepo) List(ctx context.Context, filter quotation.ListFilter) ([]quotation.Quotation, error) {
	sel := r.builder.Select(quotationColumns...).From(quotationsTable)

	if filter.Status != nil {
		sel = sel.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.FromDate != nil {
		sel = sel.Where(squirrel.GtOrEq{"date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		sel = sel.Where(squirrel.LtOrEq{"date": *filter.ToDate})
	}

	sel = sel.OrderBy("date DESC", "number DESC")

	if filter.Limit > 0 {
		sel = sel.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		sel = sel.Offset(uint64(filter.Offset))
	}

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var list []quotation.Quotation
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &list, sql, args...); err != nil {
		return nil, fmt.Errorf("select quotations: %w", err)
	}
	return list, nil
}

func (r *QuotationRepo) insertLines(ctx context.Context, q *quotation.Quotation) error {
	if len(q.Lines) == 0 {
		return nil
	}

	ins := r.builder.Insert(quotationLinesTable).
		Columns(
			"line_id", "quotation_id", "line_no", "product_id", "batch",
			"quantity", "unit_price", "discount_kind", "discount_value",
		)
	for _, l := range q.Lines {
		ins = ins.Values(
			l.LineID, q.ID, l.LineNo, l.ProductID, l.Batch,
			l.Quantity, l.UnitPrice, string(l.Discount.Kind), l.Discount.Value,
		)
	}

	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert quotation lines: %w", err)
	}
	return nil
}

func (r *QuotationRepo) getLines(ctx context.Context, quotationID id.ID) ([]quotation.Line, error) {
	sel := r.builder.Select(
		"line_id", "quotation_id", "line_no", "product_id", "batch",
		"quantity", "unit_price", "discount_kind", "discount_value",
	).From(quotationLinesTable).
		Where(squirrel.Eq{"quotation_id": quotationID}).
		OrderBy("line_no")

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []quotationLineRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("get quotation lines: %w", err)
	}

	lines := make([]quotation.Line, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, quotation.Line{
			LineID:      row.LineID,
			QuotationID: row.QuotationID,
			LineNo:      row.LineNo,
			ProductID:   row.ProductID,
			Batch:       row.Batch,
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
			Discount: types.Discount{
				Kind:  types.DiscountKind(row.DiscountKind),
				Value: row.DiscountValue,
			},
		})
	}
	return lines, nil
}

// Ensure interface compliance.
var _ quotation.Repository = (*QuotationRepo)(nil)
