// Package tx abstracts transaction boundaries so domain services never
// import a database driver. The postgres implementation lives in
// infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs a unit of work atomically. Document posting relies on this:
// stock movements and ledger legs written through the same transaction
// either all commit or all vanish.
type Manager interface {
	// RunInTransaction commits when fn returns nil and rolls back
	// otherwise. A nested call joins the transaction already carried in
	// ctx instead of opening a new one.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager adds read-only transactions for report queries that want
// a consistent snapshot without taking write locks.
type ReadOnlyManager interface {
	Manager

	// ReadOnly runs fn in a read-only transaction; writes inside fn fail.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
