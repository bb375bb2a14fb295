// Package payment holds the payment document: value moved between a cash or
// bank account and a receivable or payable balance.
package payment

import (
	"context"
	"time"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/entity"
	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
)

// Direction tells which side of the counterparty balance the payment clears.
type Direction string

const (
	// DirectionIncoming settles accounts receivable (customer pays us)
	DirectionIncoming Direction = "incoming"
	// DirectionOutgoing settles accounts payable (we pay a supplier)
	DirectionOutgoing Direction = "outgoing"
)

// Valid reports whether the direction is known.
func (d Direction) Valid() bool {
	return d == DirectionIncoming || d == DirectionOutgoing
}

// Payment is a payment document. Recording it posts one balanced transaction
// set between the payment account and the counterparty account.
type Payment struct {
	entity.Document

	Direction        Direction        `db:"direction" json:"direction"`
	CounterpartyName string           `db:"counterparty_name" json:"counterpartyName"`
	Amount           types.MinorUnits `db:"amount" json:"amount"`

	// ReferenceType/ReferenceID point to the settled document, when known
	ReferenceType string `db:"reference_type" json:"referenceType,omitempty"`
	ReferenceID   *id.ID `db:"reference_id" json:"referenceId,omitempty"`

	// LedgerSetID correlates the posted transaction set, set at recording
	LedgerSetID *id.ID `db:"ledger_set_id" json:"ledgerSetId,omitempty"`
}

// NewPayment creates a draft payment document.
func NewPayment(direction Direction, counterpartyName string, amount types.MinorUnits) *Payment {
	return &Payment{
		Document:         entity.NewDocument(),
		Direction:        direction,
		CounterpartyName: counterpartyName,
		Amount:           amount,
	}
}

// Validate implements Validatable interface.
func (p *Payment) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}
	if !p.Direction.Valid() {
		return apperror.NewValidation("unknown payment direction").
			WithDetail("direction", string(p.Direction))
	}
	if !p.Amount.IsPositive() {
		return apperror.NewValidation("payment amount must be positive").
			WithDetail("amount", p.Amount.String())
	}
	return nil
}

// ListFilter bounds payment queries.
type ListFilter struct {
	Direction *Direction
	Posted    *bool
	FromDate  *time.Time
	ToDate    *time.Time
	Limit     int
	Offset    int
}
