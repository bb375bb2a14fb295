package dto

import (
	"time"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
	"bizledger/internal/domain/documents/payment"
)

// CreatePaymentRequest creates a draft payment document.
type CreatePaymentRequest struct {
	Direction        string           `json:"direction" binding:"required"`
	CounterpartyName string           `json:"counterpartyName" binding:"required"`
	Amount           types.MinorUnits `json:"amount" binding:"required"`
	Date             *time.Time       `json:"date,omitempty"`
	Comment          string           `json:"comment,omitempty"`
	ReferenceType    string           `json:"referenceType,omitempty"`
	ReferenceID      string           `json:"referenceId,omitempty"`
}

// ToInput converts the request to a service input.
func (r *CreatePaymentRequest) ToInput() (payment.CreateInput, error) {
	in := payment.CreateInput{
		Direction:        payment.Direction(r.Direction),
		CounterpartyName: r.CounterpartyName,
		Amount:           r.Amount,
		Date:             r.Date,
		Comment:          r.Comment,
		ReferenceType:    r.ReferenceType,
	}
	if r.ReferenceID != "" {
		refID, err := id.Parse(r.ReferenceID)
		if err != nil {
			return payment.CreateInput{}, apperror.NewValidation("invalid reference id")
		}
		in.ReferenceID = &refID
	}
	return in, nil
}
