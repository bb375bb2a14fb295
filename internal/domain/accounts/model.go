// Package accounts provides the chart of accounts (AccountRegistry).
package accounts

import (
	"context"
	"time"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/entity"
	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	TypeAsset     AccountType = "asset"
	TypeLiability AccountType = "liability"
	TypeEquity    AccountType = "equity"
	TypeIncome    AccountType = "income"
	TypeExpense   AccountType = "expense"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeIncome, TypeExpense:
		return true
	}
	return false
}

// DebitNatural reports whether the account type increases on the debit side.
// Asset and expense accounts are debit-natural; liability, equity and income
// accounts are credit-natural.
func (t AccountType) DebitNatural() bool {
	return t == TypeAsset || t == TypeExpense
}

// Account is one row of the chart of accounts. Parent/child is a reporting
// relationship only; balances are never aggregated up the tree implicitly.
type Account struct {
	entity.BaseEntity

	// Code is a human-readable identifier, unique across the chart
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	Type AccountType `db:"type" json:"type"`

	// SubType is a free-form classifier within the type (e.g. "current_asset")
	SubType string `db:"sub_type" json:"subType,omitempty"`

	// ParentID references another account of the same type (nullable)
	ParentID *id.ID `db:"parent_id" json:"parentId,omitempty"`

	// OpeningBalance on the account's natural side, in minor units
	OpeningBalance types.MinorUnits `db:"opening_balance" json:"openingBalance"`

	// Active accounts accept postings; deactivated accounts keep history
	Active bool `db:"active" json:"active"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewAccount creates an active account with generated ID.
func NewAccount(code, name string, accType AccountType) *Account {
	now := time.Now().UTC()
	return &Account{
		BaseEntity: entity.NewBaseEntity(),
		Code:       code,
		Name:       name,
		Type:       accType,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate implements entity.Validatable.
func (a *Account) Validate(ctx context.Context) error {
	if a.Code == "" {
		return apperror.NewValidation("account code is required").
			WithDetail("field", "code")
	}
	if a.Name == "" {
		return apperror.NewValidation("account name is required").
			WithDetail("field", "name")
	}
	if !a.Type.Valid() {
		return apperror.NewValidation("unknown account type").
			WithDetail("field", "type").
			WithDetail("value", string(a.Type))
	}
	return nil
}

// SignedAmount converts a debit/credit pair into a balance delta following the
// account's sign convention.
func (a *Account) SignedAmount(debit, credit types.MinorUnits) types.MinorUnits {
	if a.Type.DebitNatural() {
		return debit - credit
	}
	return credit - debit
}

// TreeNode is one node of the hierarchical chart-of-accounts view.
// The hierarchy is resolved at read time from the flat parent keys.
type TreeNode struct {
	Account  *Account    `json:"account"`
	Children []*TreeNode `json:"children,omitempty"`
}
