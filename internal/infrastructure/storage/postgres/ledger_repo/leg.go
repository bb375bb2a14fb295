package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
	"bizledger/internal/domain/ledger"
	"bizledger/internal/infrastructure/storage/postgres"
)

const legsTable = "reg_ledger_legs"

var legColumns = []string{
	"line_id", "set_id", "line_no", "account_id", "date",
	"reference_type", "reference_id", "debit", "credit",
	"description", "created_by", "created_at",
}

// Leg ordering: business date first, then set and line number. The set/line
// tiebreak makes ledger pages deterministic across repeated queries.
const legOrder = "date, set_id, line_no"

// LegRepo implements ledger.Repository.
type LegRepo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
	builder   squirrel.StatementBuilderType
}

// NewLegRepo creates a new ledger leg repository.
func NewLegRepo(txManager *postgres.TxManager) *LegRepo {
	return &LegRepo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateLegs batch inserts all legs of one set.
func (r *LegRepo) CreateLegs(ctx context.Context, legs []ledger.Leg) error {
	if len(legs) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txManager.GetTx(ctx); tx != nil {
		rows := make([][]any, 0, len(legs))
		for _, l := range legs {
			rows = append(rows, []any{
				l.LineID, l.SetID, l.LineNo, l.AccountID, l.Date,
				l.ReferenceType, l.ReferenceID, l.Debit, l.Credit,
				l.Description, l.CreatedBy, l.CreatedAt,
			})
		}
		if _, err := r.inserter.CopyFromSlice(ctx, legsTable, legColumns, rows); err != nil {
			return fmt.Errorf("copy legs: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(legsTable).Columns(legColumns...)
	for _, l := range legs {
		q = q.Values(
			l.LineID, l.SetID, l.LineNo, l.AccountID, l.Date,
			l.ReferenceType, l.ReferenceID, l.Debit, l.Credit,
			l.Description, l.CreatedBy, l.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert legs: %w", err)
	}
	return nil
}

// GetSet retrieves all legs of a set in line order.
func (r *LegRepo) GetSet(ctx context.Context, setID id.ID) ([]ledger.Leg, error) {
	q := r.builder.Select(legColumns...).
		From(legsTable).
		Where(squirrel.Eq{"set_id": setID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var legs []ledger.Leg
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &legs, sql, args...); err != nil {
		return nil, fmt.Errorf("select set: %w", err)
	}
	return legs, nil
}

// SumByAccount returns total posted debit and credit for an account.
func (r *LegRepo) SumByAccount(ctx context.Context, accountID id.ID, asOf *time.Time) (types.MinorUnits, types.MinorUnits, error) {
	sql := `
		SELECT COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0)
		FROM reg_ledger_legs
		WHERE account_id = $1
	`
	args := []any{accountID}
	if asOf != nil {
		sql += " AND date <= $2"
		args = append(args, *asOf)
	}

	var debit, credit int64
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&debit, &credit)
	if err != nil && err != pgx.ErrNoRows {
		return 0, 0, fmt.Errorf("sum account: %w", err)
	}
	return types.MinorUnits(debit), types.MinorUnits(credit), nil
}

func (r *LegRepo) windowQuery(accountID id.ID, from, to time.Time, limit, offset int) squirrel.SelectBuilder {
	q := r.builder.Select(legColumns...).
		From(legsTable).
		Where(squirrel.Eq{"account_id": accountID}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.LtOrEq{"date": to}).
		OrderBy(legOrder)

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	return q
}

// ListByAccount returns legs for an account within [from, to] in
// chronological order.
func (r *LegRepo) ListByAccount(ctx context.Context, accountID id.ID, from, to time.Time, limit, offset int) ([]ledger.Leg, error) {
	sql, args, err := r.windowQuery(accountID, from, to, limit, offset).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var legs []ledger.Leg
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &legs, sql, args...); err != nil {
		return nil, fmt.Errorf("select legs: %w", err)
	}
	return legs, nil
}

// SumWindowPrefix sums debit and credit of the first prefixRows legs of the
// ordered window ListByAccount reads.
func (r *LegRepo) SumWindowPrefix(ctx context.Context, accountID id.ID, from, to time.Time, prefixRows int) (types.MinorUnits, types.MinorUnits, error) {
	if prefixRows <= 0 {
		return 0, 0, nil
	}

	sql := `
		SELECT COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0)
		FROM (
			SELECT debit, credit
			FROM reg_ledger_legs
			WHERE account_id = $1 AND date >= $2 AND date <= $3
			ORDER BY date, set_id, line_no
			LIMIT $4
		) prefix
	`

	var debit, credit int64
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, accountID, from, to, prefixRows).Scan(&debit, &credit)
	if err != nil && err != pgx.ErrNoRows {
		return 0, 0, fmt.Errorf("sum window prefix: %w", err)
	}
	return types.MinorUnits(debit), types.MinorUnits(credit), nil
}

// SumsPerAccount returns debit/credit totals for every account with at
// least one leg.
func (r *LegRepo) SumsPerAccount(ctx context.Context, asOf *time.Time) ([]ledger.AccountSums, error) {
	q := r.builder.Select(
		"account_id",
		"COALESCE(SUM(debit), 0) AS debit",
		"COALESCE(SUM(credit), 0) AS credit",
	).From(legsTable).
		GroupBy("account_id")

	if asOf != nil {
		q = q.Where(squirrel.LtOrEq{"date": *asOf})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sums []ledger.AccountSums
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &sums, sql, args...); err != nil {
		return nil, fmt.Errorf("select sums: %w", err)
	}
	return sums, nil
}

// Ensure interface compliance.
var _ ledger.Repository = (*LegRepo)(nil)
