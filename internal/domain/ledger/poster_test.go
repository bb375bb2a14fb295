package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/core/types"

	"bizledger/internal/domain/accounts"
)

// Mock objects

type fakeTxManager struct {
	calls int
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockAccountRepo struct {
	accounts map[id.ID]*accounts.Account
}

func newMockAccountRepo(accs ...*accounts.Account) *mockAccountRepo {
	m := &mockAccountRepo{accounts: make(map[id.ID]*accounts.Account)}
	for _, a := range accs {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *mockAccountRepo) Create(ctx context.Context, account *accounts.Account) error {
	m.accounts[account.ID] = account
	return nil
}

func (m *mockAccountRepo) Update(ctx context.Context, account *accounts.Account) error {
	m.accounts[account.ID] = account
	return nil
}

func (m *mockAccountRepo) GetByID(ctx context.Context, accountID id.ID) (*accounts.Account, error) {
	a, ok := m.accounts[accountID]
	if !ok {
		return nil, apperror.NewNotFound("account", accountID.String())
	}
	return a, nil
}

func (m *mockAccountRepo) GetByCode(ctx context.Context, code string) (*accounts.Account, error) {
	for _, a := range m.accounts {
		if a.Code == code {
			return a, nil
		}
	}
	return nil, apperror.NewNotFound("account", code)
}

func (m *mockAccountRepo) GetByIDs(ctx context.Context, ids []id.ID) ([]*accounts.Account, error) {
	var out []*accounts.Account
	for _, accountID := range ids {
		if a, ok := m.accounts[accountID]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAccountRepo) List(ctx context.Context) ([]*accounts.Account, error) {
	out := make([]*accounts.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (m *mockAccountRepo) HasPostings(ctx context.Context, accountID id.ID) (bool, error) {
	return false, nil
}

type mockLegRepo struct {
	legs []Leg

	sums     map[id.ID]AccountSums
	listResp []Leg
}

func newMockLegRepo() *mockLegRepo {
	return &mockLegRepo{sums: make(map[id.ID]AccountSums)}
}

func (m *mockLegRepo) CreateLegs(ctx context.Context, legs []Leg) error {
	m.legs = append(m.legs, legs...)
	return nil
}

func (m *mockLegRepo) GetSet(ctx context.Context, setID id.ID) ([]Leg, error) {
	var out []Leg
	for _, l := range m.legs {
		if l.SetID == setID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLegRepo) SumByAccount(ctx context.Context, accountID id.ID, asOf *time.Time) (types.MinorUnits, types.MinorUnits, error) {
	s := m.sums[accountID]
	return s.Debit, s.Credit, nil
}

func (m *mockLegRepo) ListByAccount(ctx context.Context, accountID id.ID, from, to time.Time, limit, offset int) ([]Leg, error) {
	return m.listResp, nil
}

func (m *mockLegRepo) SumWindowPrefix(ctx context.Context, accountID id.ID, from, to time.Time, prefixRows int) (types.MinorUnits, types.MinorUnits, error) {
	var debit, credit types.MinorUnits
	for i, l := range m.listResp {
		if i >= prefixRows {
			break
		}
		debit += l.Debit
		credit += l.Credit
	}
	return debit, credit, nil
}

func (m *mockLegRepo) SumsPerAccount(ctx context.Context, asOf *time.Time) ([]AccountSums, error) {
	out := make([]AccountSums, 0, len(m.sums))
	for accountID, s := range m.sums {
		s.AccountID = accountID
		out = append(out, s)
	}
	return out, nil
}

func testAccount(code, name string, accType accounts.AccountType) *accounts.Account {
	return accounts.NewAccount(code, name, accType)
}

func TestPoster_Post_BalancedSet(t *testing.T) {
	cash := testAccount("1000", "Cash", accounts.TypeAsset)
	revenue := testAccount("4000", "Sales Revenue", accounts.TypeIncome)

	legRepo := newMockLegRepo()
	txm := &fakeTxManager{}
	poster := NewPoster(legRepo, newMockAccountRepo(cash, revenue), txm)

	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	setID, err := poster.Post(context.Background(), date, []DraftLeg{
		DebitDraft(cash.ID, 10000, "cash sale"),
		CreditDraft(revenue.ID, 10000, "cash sale"),
	})
	require.NoError(t, err)
	require.False(t, id.IsNil(setID))

	require.Len(t, legRepo.legs, 2)
	assert.Equal(t, 1, txm.calls)

	first, second := legRepo.legs[0], legRepo.legs[1]
	assert.Equal(t, setID, first.SetID)
	assert.Equal(t, setID, second.SetID)
	assert.Equal(t, 1, first.LineNo)
	assert.Equal(t, 2, second.LineNo)
	assert.Equal(t, types.MinorUnits(10000), first.Debit)
	assert.Equal(t, types.MinorUnits(10000), second.Credit)
	assert.Equal(t, date, first.Date)
}

func TestPoster_Post_Imbalanced(t *testing.T) {
	cash := testAccount("1000", "Cash", accounts.TypeAsset)
	revenue := testAccount("4000", "Sales Revenue", accounts.TypeIncome)

	legRepo := newMockLegRepo()
	poster := NewPoster(legRepo, newMockAccountRepo(cash, revenue), &fakeTxManager{})

	_, err := poster.Post(context.Background(), time.Now(), []DraftLeg{
		DebitDraft(cash.ID, 10000, ""),
		CreditDraft(revenue.ID, 9999, ""),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeImbalancedPosting))
	assert.Empty(t, legRepo.legs, "nothing may persist when the set is rejected")
}

func TestPoster_Post_ShapeValidation(t *testing.T) {
	cash := testAccount("1000", "Cash", accounts.TypeAsset)
	revenue := testAccount("4000", "Sales Revenue", accounts.TypeIncome)
	poster := NewPoster(newMockLegRepo(), newMockAccountRepo(cash, revenue), &fakeTxManager{})
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		name   string
		date   time.Time
		drafts []DraftLeg
	}{
		{
			name:   "zero date",
			drafts: []DraftLeg{DebitDraft(cash.ID, 100, ""), CreditDraft(revenue.ID, 100, "")},
		},
		{
			name:   "single leg",
			date:   now,
			drafts: []DraftLeg{DebitDraft(cash.ID, 100, "")},
		},
		{
			name:   "nil account",
			date:   now,
			drafts: []DraftLeg{DebitDraft(id.Nil(), 100, ""), CreditDraft(revenue.ID, 100, "")},
		},
		{
			name: "both sides set",
			date: now,
			drafts: []DraftLeg{
				{AccountID: cash.ID, Debit: 100, Credit: 100},
				CreditDraft(revenue.ID, 100, ""),
			},
		},
		{
			name: "neither side set",
			date: now,
			drafts: []DraftLeg{
				{AccountID: cash.ID},
				CreditDraft(revenue.ID, 100, ""),
			},
		},
		{
			name: "negative amount",
			date: now,
			drafts: []DraftLeg{
				{AccountID: cash.ID, Debit: -100},
				CreditDraft(revenue.ID, 100, ""),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := poster.Post(ctx, tt.date, tt.drafts)
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "expected validation error, got %v", err)
		})
	}
}

func TestPoster_Post_InactiveAccount(t *testing.T) {
	cash := testAccount("1000", "Cash", accounts.TypeAsset)
	dormant := testAccount("4090", "Legacy Revenue", accounts.TypeIncome)
	dormant.Active = false

	poster := NewPoster(newMockLegRepo(), newMockAccountRepo(cash, dormant), &fakeTxManager{})

	_, err := poster.Post(context.Background(), time.Now(), []DraftLeg{
		DebitDraft(cash.ID, 500, ""),
		CreditDraft(dormant.ID, 500, ""),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInactiveAccount))
}

func TestPoster_Post_UnknownAccount(t *testing.T) {
	cash := testAccount("1000", "Cash", accounts.TypeAsset)
	poster := NewPoster(newMockLegRepo(), newMockAccountRepo(cash), &fakeTxManager{})

	_, err := poster.Post(context.Background(), time.Now(), []DraftLeg{
		DebitDraft(cash.ID, 500, ""),
		CreditDraft(id.New(), 500, ""),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestPoster_Post_MultiLegSet(t *testing.T) {
	cash := testAccount("1000", "Cash", accounts.TypeAsset)
	receivable := testAccount("1100", "Accounts Receivable", accounts.TypeAsset)
	revenue := testAccount("4000", "Sales Revenue", accounts.TypeIncome)

	legRepo := newMockLegRepo()
	poster := NewPoster(legRepo, newMockAccountRepo(cash, receivable, revenue), &fakeTxManager{})

	// Split tender: part cash, part on account.
	_, err := poster.Post(context.Background(), time.Now(), []DraftLeg{
		DebitDraft(cash.ID, 3000, "deposit"),
		DebitDraft(receivable.ID, 7000, "balance due"),
		CreditDraft(revenue.ID, 10000, "sale"),
	})
	require.NoError(t, err)
	require.Len(t, legRepo.legs, 3)
}
