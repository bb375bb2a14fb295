package sale

import (
	"context"

	"bizledger/internal/core/id"
)

// Repository defines persistence operations for sales documents.
type Repository interface {
	// Create inserts the document with its lines
	Create(ctx context.Context, s *Sale) error

	// Update persists header changes with optimistic locking
	Update(ctx context.Context, s *Sale) error

	// GetByID returns the document with lines loaded
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)

	// GetForUpdate returns the document with a row lock for finalization
	GetForUpdate(ctx context.Context, saleID id.ID) (*Sale, error)

	// List returns documents matching the filter, newest first, without lines
	List(ctx context.Context, filter ListFilter) ([]Sale, error)
}
