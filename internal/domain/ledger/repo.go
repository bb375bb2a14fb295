package ledger

import (
	"context"
	"time"

	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
)

// Repository defines persistence operations for ledger legs.
//
// Write operations must be called inside a transaction; query methods work
// both inside and outside one.
type Repository interface {
	// CreateLegs batch inserts all legs of one set
	CreateLegs(ctx context.Context, legs []Leg) error

	// GetSet retrieves all legs of a set in line order
	GetSet(ctx context.Context, setID id.ID) ([]Leg, error)

	// SumByAccount returns total posted debit and credit for an account,
	// optionally bounded by business date (inclusive)
	SumByAccount(ctx context.Context, accountID id.ID, asOf *time.Time) (debit, credit types.MinorUnits, err error)

	// ListByAccount returns legs for an account within [from, to] in
	// chronological order, ties broken by (set_id, line_no)
	ListByAccount(ctx context.Context, accountID id.ID, from, to time.Time, limit, offset int) ([]Leg, error)

	// SumWindowPrefix sums debit and credit of the first prefixRows legs of
	// the same ordered window ListByAccount reads. Used to seed the running
	// balance of a page without fetching prior pages.
	SumWindowPrefix(ctx context.Context, accountID id.ID, from, to time.Time, prefixRows int) (debit, credit types.MinorUnits, err error)

	// SumsPerAccount returns debit/credit totals for every account with at
	// least one leg, optionally bounded by business date (trial balance)
	SumsPerAccount(ctx context.Context, asOf *time.Time) ([]AccountSums, error)
}
