package payment

import (
	"context"

	"bizledger/internal/core/id"
)

// Repository defines persistence operations for payment documents.
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	Update(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, paymentID id.ID) (*Payment, error)
	GetForUpdate(ctx context.Context, paymentID id.ID) (*Payment, error)
	List(ctx context.Context, filter ListFilter) ([]Payment, error)
}
