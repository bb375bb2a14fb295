// Package ledger provides the double-entry financial ledger: atomic posting of
// balanced transaction sets and the query side (balances, account ledgers,
// trial balance).
package ledger

import (
	"time"

	"bizledger/internal/core/id"
	"bizledger/internal/core/types"

	"bizledger/internal/domain/accounts"
)

// Leg is one debit or credit line of a transaction set. Legs are immutable
// once posted; corrections are made with reversing sets.
type Leg struct {
	// LineID is unique identifier for this leg (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	// SetID correlates all legs posted together
	SetID id.ID `db:"set_id" json:"setId"`

	// LineNo is the position of the leg within its set (1-based)
	LineNo int `db:"line_no" json:"lineNo"`

	AccountID id.ID `db:"account_id" json:"accountId"`

	// Date is the business date of the posting
	Date time.Time `db:"date" json:"date"`

	// ReferenceType/ReferenceID point to the originating business document
	ReferenceType string `db:"reference_type" json:"referenceType,omitempty"`
	ReferenceID   id.ID  `db:"reference_id" json:"referenceId,omitempty"`

	// Exactly one of Debit/Credit is non-zero
	Debit  types.MinorUnits `db:"debit" json:"debit"`
	Credit types.MinorUnits `db:"credit" json:"credit"`

	Description string `db:"description" json:"description,omitempty"`

	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// DraftLeg is the caller-supplied input for one leg of a set.
type DraftLeg struct {
	AccountID     id.ID
	Debit         types.MinorUnits
	Credit        types.MinorUnits
	Description   string
	ReferenceType string
	ReferenceID   id.ID
}

// DebitDraft builds a debit leg.
func DebitDraft(accountID id.ID, amount types.MinorUnits, description string) DraftLeg {
	return DraftLeg{AccountID: accountID, Debit: amount, Description: description}
}

// CreditDraft builds a credit leg.
func CreditDraft(accountID id.ID, amount types.MinorUnits, description string) DraftLeg {
	return DraftLeg{AccountID: accountID, Credit: amount, Description: description}
}

// WithReference attaches the originating document to the leg.
func (d DraftLeg) WithReference(refType string, refID id.ID) DraftLeg {
	d.ReferenceType = refType
	d.ReferenceID = refID
	return d
}

// Row is one account-ledger line with the balance after applying it.
type Row struct {
	Leg

	// RunningBalance is the account balance after this leg, folded from the
	// opening balance following the account's sign convention
	RunningBalance types.MinorUnits `json:"runningBalance"`
}

// Page is one page of an account ledger.
type Page struct {
	AccountID id.ID `json:"accountId"`

	// StartBalance is the balance immediately before the first row
	StartBalance types.MinorUnits `json:"startBalance"`

	Rows []Row `json:"rows"`

	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Query bounds an account-ledger page request.
type Query struct {
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// AccountSums aggregates posted debits and credits for one account.
type AccountSums struct {
	AccountID id.ID            `db:"account_id"`
	Debit     types.MinorUnits `db:"debit"`
	Credit    types.MinorUnits `db:"credit"`
}

// TrialBalanceRow is one account line of the trial balance.
type TrialBalanceRow struct {
	AccountID id.ID                `json:"accountId"`
	Code      string               `json:"code"`
	Name      string               `json:"name"`
	Type      accounts.AccountType `json:"type"`

	// A balance appears in exactly one column: its natural side when
	// positive, the opposite side when negative.
	Debit  types.MinorUnits `json:"debit"`
	Credit types.MinorUnits `json:"credit"`
}

// TrialBalanceSection groups rows of one account type.
type TrialBalanceSection struct {
	Type           accounts.AccountType `json:"type"`
	Rows           []TrialBalanceRow    `json:"rows"`
	SubtotalDebit  types.MinorUnits     `json:"subtotalDebit"`
	SubtotalCredit types.MinorUnits     `json:"subtotalCredit"`
}

// TrialBalance sums every account's balance by type.
// TotalDebit equals TotalCredit whenever only fully-posted sets exist.
type TrialBalance struct {
	AsOf        *time.Time            `json:"asOf,omitempty"`
	Sections    []TrialBalanceSection `json:"sections"`
	TotalDebit  types.MinorUnits      `json:"totalDebit"`
	TotalCredit types.MinorUnits      `json:"totalCredit"`
}
