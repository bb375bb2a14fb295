package quotation

import (
	"context"

	"bizledger/internal/core/id"
)

// Repository defines persistence operations for quotations.
type Repository interface {
	// Create inserts the quotation with its lines
	Create(ctx context.Context, q *Quotation) error

	// Update persists header changes with optimistic locking
	Update(ctx context.Context, q *Quotation) error

	// GetByID returns the quotation with lines loaded
	GetByID(ctx context.Context, quotationID id.ID) (*Quotation, error)

	// GetForUpdate returns the quotation with a row lock. Conversion runs
	// under this lock so two concurrent conversions serialize.
	GetForUpdate(ctx context.Context, quotationID id.ID) (*Quotation, error)

	// List returns quotations matching the filter, newest first, without lines
	List(ctx context.Context, filter ListFilter) ([]Quotation, error)
}
