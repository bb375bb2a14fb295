package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizledger/internal/core/id"
	"bizledger/internal/core/types"

	"bizledger/internal/domain/accounts"
)

func TestReader_Balance(t *testing.T) {
	cash := testAccount("1000", "Cash", accounts.TypeAsset)
	cash.OpeningBalance = 5000
	payable := testAccount("2100", "Accounts Payable", accounts.TypeLiability)

	legRepo := newMockLegRepo()
	legRepo.sums[cash.ID] = AccountSums{Debit: 10000, Credit: 3000}
	legRepo.sums[payable.ID] = AccountSums{Debit: 2000, Credit: 9000}

	reader := NewReader(legRepo, newMockAccountRepo(cash, payable))
	ctx := context.Background()

	// Debit-natural: opening + debit - credit.
	balance, err := reader.Balance(ctx, cash.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, types.MinorUnits(12000), balance)

	// Credit-natural: opening + credit - debit.
	balance, err = reader.Balance(ctx, payable.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, types.MinorUnits(7000), balance)
}

func TestReader_Balance_UnknownAccount(t *testing.T) {
	reader := NewReader(newMockLegRepo(), newMockAccountRepo())
	_, err := reader.Balance(context.Background(), id.New(), nil)
	require.Error(t, err)
}

func TestReader_Ledger_RunningBalance(t *testing.T) {
	cash := testAccount("1000", "Cash", accounts.TypeAsset)
	cash.OpeningBalance = 1000

	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	legRepo := newMockLegRepo()
	legRepo.listResp = []Leg{
		{LineID: id.New(), AccountID: cash.ID, Date: day, Debit: 500},
		{LineID: id.New(), AccountID: cash.ID, Date: day.AddDate(0, 0, 1), Credit: 200},
		{LineID: id.New(), AccountID: cash.ID, Date: day.AddDate(0, 0, 2), Debit: 100},
	}

	reader := NewReader(legRepo, newMockAccountRepo(cash))
	page, err := reader.Ledger(context.Background(), cash.ID, Query{})
	require.NoError(t, err)

	require.Len(t, page.Rows, 3)
	assert.Equal(t, types.MinorUnits(1000), page.StartBalance)
	assert.Equal(t, types.MinorUnits(1500), page.Rows[0].RunningBalance)
	assert.Equal(t, types.MinorUnits(1300), page.Rows[1].RunningBalance)
	assert.Equal(t, types.MinorUnits(1400), page.Rows[2].RunningBalance)
	assert.Equal(t, 50, page.Limit, "default page size applies")
}

func TestReader_Ledger_InvalidWindow(t *testing.T) {
	cash := testAccount("1000", "Cash", accounts.TypeAsset)
	reader := NewReader(newMockLegRepo(), newMockAccountRepo(cash))

	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -7)
	_, err := reader.Ledger(context.Background(), cash.ID, Query{From: from, To: to})
	require.Error(t, err)
}

func TestReader_GetSet_NotFound(t *testing.T) {
	reader := NewReader(newMockLegRepo(), newMockAccountRepo())
	_, err := reader.GetSet(context.Background(), id.New())
	require.Error(t, err)
}

func TestReader_TrialBalance(t *testing.T) {
	cash := testAccount("1000", "Cash", accounts.TypeAsset)
	receivable := testAccount("1100", "Accounts Receivable", accounts.TypeAsset)
	payable := testAccount("2100", "Accounts Payable", accounts.TypeLiability)
	revenue := testAccount("4000", "Sales Revenue", accounts.TypeIncome)
	cogs := testAccount("5000", "Cost of Goods Sold", accounts.TypeExpense)

	// A cash sale of 100.00 with 60.00 cost of goods.
	legRepo := newMockLegRepo()
	legRepo.sums[cash.ID] = AccountSums{Debit: 10000}
	legRepo.sums[revenue.ID] = AccountSums{Credit: 10000}
	legRepo.sums[cogs.ID] = AccountSums{Debit: 6000}
	legRepo.sums[receivable.ID] = AccountSums{}
	legRepo.sums[payable.ID] = AccountSums{Credit: 6000}

	reader := NewReader(legRepo, newMockAccountRepo(cash, receivable, payable, revenue, cogs))
	report, err := reader.TrialBalance(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, report.TotalDebit, report.TotalCredit, "grand totals must balance")
	assert.Equal(t, types.MinorUnits(16000), report.TotalDebit)

	// Sections come out in fixed type order, skipping empty types.
	require.Len(t, report.Sections, 4)
	assert.Equal(t, accounts.TypeAsset, report.Sections[0].Type)
	assert.Equal(t, accounts.TypeLiability, report.Sections[1].Type)
	assert.Equal(t, accounts.TypeIncome, report.Sections[2].Type)
	assert.Equal(t, accounts.TypeExpense, report.Sections[3].Type)

	// Asset rows sorted by code.
	assetRows := report.Sections[0].Rows
	require.Len(t, assetRows, 2)
	assert.Equal(t, "1000", assetRows[0].Code)
	assert.Equal(t, "1100", assetRows[1].Code)
	assert.Equal(t, types.MinorUnits(10000), assetRows[0].Debit)
}

func TestReader_TrialBalance_NegativeBalanceFlipsColumn(t *testing.T) {
	// An overdrawn cash account shows up in the credit column.
	cash := testAccount("1000", "Cash", accounts.TypeAsset)

	legRepo := newMockLegRepo()
	legRepo.sums[cash.ID] = AccountSums{Debit: 1000, Credit: 4000}

	reader := NewReader(legRepo, newMockAccountRepo(cash))
	report, err := reader.TrialBalance(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, report.Sections, 1)
	row := report.Sections[0].Rows[0]
	assert.Equal(t, types.MinorUnits(0), row.Debit)
	assert.Equal(t, types.MinorUnits(3000), row.Credit)
}
