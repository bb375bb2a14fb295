package purchase

import (
	"context"

	"bizledger/internal/core/id"
)

// Repository defines persistence operations for purchase documents.
type Repository interface {
	// Create inserts the document with its lines
	Create(ctx context.Context, p *Purchase) error

	// Update persists header changes with optimistic locking
	Update(ctx context.Context, p *Purchase) error

	// GetByID returns the document with lines loaded
	GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error)

	// GetForUpdate returns the document with a row lock for receipt
	GetForUpdate(ctx context.Context, purchaseID id.ID) (*Purchase, error)

	// List returns documents matching the filter, newest first, without lines
	List(ctx context.Context, filter ListFilter) ([]Purchase, error)
}
