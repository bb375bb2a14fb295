package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// NumberingQuerier routes numerator queries to the active transaction when
// one is in the context, falling back to the pool. Document numbers are
// allocated inside the same transaction that creates the document, so a
// rolled-back create does not burn a strict-sequence number.
type NumberingQuerier struct {
	txManager *TxManager
}

// NewNumberingQuerier creates a querier for the numerator service.
func NewNumberingQuerier(txManager *TxManager) *NumberingQuerier {
	return &NumberingQuerier{txManager: txManager}
}

// QueryRow executes the query on the context's transaction or the pool.
func (q *NumberingQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return q.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...)
}
