package dto

import (
	"time"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
	"bizledger/internal/domain/ledger"
)

// PostSetRequest posts one balanced transaction set.
type PostSetRequest struct {
	Date time.Time        `json:"date" binding:"required"`
	Legs []LegRequest     `json:"legs" binding:"required,min=2,dive"`
}

// LegRequest is one leg of the set. Exactly one of debit and credit must be
// positive; balance is enforced by the poster, not here.
type LegRequest struct {
	AccountID     string           `json:"accountId" binding:"required"`
	Debit         types.MinorUnits `json:"debit,omitempty"`
	Credit        types.MinorUnits `json:"credit,omitempty"`
	Description   string           `json:"description,omitempty"`
	ReferenceType string           `json:"referenceType,omitempty"`
	ReferenceID   string           `json:"referenceId,omitempty"`
}

// ToDrafts converts the request legs to poster drafts.
func (r *PostSetRequest) ToDrafts() ([]ledger.DraftLeg, error) {
	drafts := make([]ledger.DraftLeg, 0, len(r.Legs))
	for i, leg := range r.Legs {
		accountID, err := id.Parse(leg.AccountID)
		if err != nil {
			return nil, apperror.NewValidation("invalid account id").
				WithDetail("lineNo", i+1)
		}
		draft := ledger.DraftLeg{
			AccountID:     accountID,
			Debit:         leg.Debit,
			Credit:        leg.Credit,
			Description:   leg.Description,
			ReferenceType: leg.ReferenceType,
		}
		if leg.ReferenceID != "" {
			refID, err := id.Parse(leg.ReferenceID)
			if err != nil {
				return nil, apperror.NewValidation("invalid reference id").
					WithDetail("lineNo", i+1)
			}
			draft.ReferenceID = refID
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

// PostSetResponse returns the posted set.
type PostSetResponse struct {
	SetID string       `json:"setId"`
	Legs  []ledger.Leg `json:"legs,omitempty"`
}

// BalanceResponse is one account balance at a point in time.
type BalanceResponse struct {
	AccountID string           `json:"accountId"`
	AsOf      *time.Time       `json:"asOf,omitempty"`
	Balance   types.MinorUnits `json:"balance"`
}
