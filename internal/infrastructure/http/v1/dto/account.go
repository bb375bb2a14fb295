package dto

import (
	"bizledger/internal/core/types"
	"bizledger/internal/domain/accounts"
)

// CreateAccountRequest adds one account to the chart.
type CreateAccountRequest struct {
	Code           string           `json:"code" binding:"required"`
	Name           string           `json:"name" binding:"required"`
	Type           string           `json:"type" binding:"required"`
	SubType        string           `json:"subType,omitempty"`
	ParentCode     string           `json:"parentCode,omitempty"`
	OpeningBalance types.MinorUnits `json:"openingBalance,omitempty"`
}

// ToInput converts the request to a registry input.
func (r *CreateAccountRequest) ToInput() accounts.CreateInput {
	return accounts.CreateInput{
		Code:           r.Code,
		Name:           r.Name,
		Type:           accounts.AccountType(r.Type),
		SubType:        r.SubType,
		ParentCode:     r.ParentCode,
		OpeningBalance: r.OpeningBalance,
	}
}

// CorrectOpeningBalanceRequest replaces an account's opening balance.
type CorrectOpeningBalanceRequest struct {
	OpeningBalance types.MinorUnits `json:"openingBalance"`
}
