package accounts

import (
	"context"

	"bizledger/internal/core/id"
)

// Repository defines persistence operations for the chart of accounts.
type Repository interface {
	// Create inserts a new account
	Create(ctx context.Context, account *Account) error

	// Update modifies an existing account with optimistic locking
	Update(ctx context.Context, account *Account) error

	// GetByID retrieves an account by ID
	GetByID(ctx context.Context, accountID id.ID) (*Account, error)

	// GetByCode retrieves an account by its unique code
	GetByCode(ctx context.Context, code string) (*Account, error)

	// GetByIDs retrieves several accounts at once (posting validation)
	GetByIDs(ctx context.Context, ids []id.ID) ([]*Account, error)

	// List returns the full chart ordered by code
	List(ctx context.Context) ([]*Account, error)

	// HasPostings reports whether any ledger leg references the account
	HasPostings(ctx context.Context, accountID id.ID) (bool, error)
}
