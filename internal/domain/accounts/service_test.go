package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
)

type fakeTxManager struct{}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockRepo struct {
	byID     map[id.ID]*Account
	postings map[id.ID]bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		byID:     make(map[id.ID]*Account),
		postings: make(map[id.ID]bool),
	}
}

func (m *mockRepo) Create(ctx context.Context, account *Account) error {
	cp := *account
	m.byID[account.ID] = &cp
	return nil
}

func (m *mockRepo) Update(ctx context.Context, account *Account) error {
	if _, ok := m.byID[account.ID]; !ok {
		return apperror.NewNotFound("account", account.ID.String())
	}
	cp := *account
	m.byID[account.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, accountID id.ID) (*Account, error) {
	a, ok := m.byID[accountID]
	if !ok {
		return nil, apperror.NewNotFound("account", accountID.String())
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) GetByCode(ctx context.Context, code string) (*Account, error) {
	for _, a := range m.byID {
		if a.Code == code {
			cp := *a
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("account", code)
}

func (m *mockRepo) GetByIDs(ctx context.Context, ids []id.ID) ([]*Account, error) {
	out := make([]*Account, 0, len(ids))
	for _, aid := range ids {
		if a, ok := m.byID[aid]; ok {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRepo) List(ctx context.Context) ([]*Account, error) {
	out := make([]*Account, 0, len(m.byID))
	for _, a := range m.byID {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockRepo) HasPostings(ctx context.Context, accountID id.ID) (bool, error) {
	return m.postings[accountID], nil
}

func TestRegistryCreate(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo()
	reg := NewRegistry(repo, &fakeTxManager{})

	created, err := reg.Create(ctx, CreateInput{
		Code:           "1000",
		Name:           "Cash",
		Type:           TypeAsset,
		SubType:        "cash",
		OpeningBalance: types.MinorUnits(50_00),
	})
	require.NoError(t, err)
	assert.Equal(t, "1000", created.Code)
	assert.True(t, created.Active)
	assert.Equal(t, types.MinorUnits(50_00), created.OpeningBalance)

	stored, err := repo.GetByCode(ctx, "1000")
	require.NoError(t, err)
	assert.Equal(t, created.ID, stored.ID)
}

func TestRegistryCreateDuplicateCode(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(newMockRepo(), &fakeTxManager{})

	_, err := reg.Create(ctx, CreateInput{Code: "1000", Name: "Cash", Type: TypeAsset})
	require.NoError(t, err)

	_, err = reg.Create(ctx, CreateInput{Code: "1000", Name: "Cash again", Type: TypeAsset})
	assert.True(t, apperror.IsCode(err, apperror.CodeDuplicate))
}

func TestRegistryCreateValidation(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(newMockRepo(), &fakeTxManager{})

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"empty code", CreateInput{Name: "Cash", Type: TypeAsset}},
		{"empty name", CreateInput{Code: "1000", Type: TypeAsset}},
		{"unknown type", CreateInput{Code: "1000", Name: "Cash", Type: AccountType("bogus")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Create(ctx, tt.in)
			assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
		})
	}
}

func TestRegistryCreateWithParent(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(newMockRepo(), &fakeTxManager{})

	parent, err := reg.Create(ctx, CreateInput{Code: "1000", Name: "Current Assets", Type: TypeAsset})
	require.NoError(t, err)

	child, err := reg.Create(ctx, CreateInput{
		Code:       "1010",
		Name:       "Petty Cash",
		Type:       TypeAsset,
		ParentCode: "1000",
	})
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parent.ID, *child.ParentID)
}

func TestRegistryCreateParentTypeMismatch(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(newMockRepo(), &fakeTxManager{})

	_, err := reg.Create(ctx, CreateInput{Code: "1000", Name: "Cash", Type: TypeAsset})
	require.NoError(t, err)

	_, err = reg.Create(ctx, CreateInput{
		Code:       "4010",
		Name:       "Service Revenue",
		Type:       TypeIncome,
		ParentCode: "1000",
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestRegistryListTree(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(newMockRepo(), &fakeTxManager{})

	_, err := reg.Create(ctx, CreateInput{Code: "1000", Name: "Assets", Type: TypeAsset})
	require.NoError(t, err)
	_, err = reg.Create(ctx, CreateInput{Code: "1010", Name: "Cash", Type: TypeAsset, ParentCode: "1000"})
	require.NoError(t, err)
	_, err = reg.Create(ctx, CreateInput{Code: "2100", Name: "Payable", Type: TypeLiability})
	require.NoError(t, err)

	roots, err := reg.ListTree(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 2)

	byCode := make(map[string]*TreeNode, len(roots))
	for _, n := range roots {
		byCode[n.Account.Code] = n
	}
	require.Contains(t, byCode, "1000")
	require.Contains(t, byCode, "2100")
	require.Len(t, byCode["1000"].Children, 1)
	assert.Equal(t, "1010", byCode["1000"].Children[0].Account.Code)
	assert.Empty(t, byCode["2100"].Children)
}

func TestRegistryListTreeOrphanPromoted(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo()
	reg := NewRegistry(repo, &fakeTxManager{})

	orphan := NewAccount("1010", "Cash", TypeAsset)
	missing := id.New()
	orphan.ParentID = &missing
	require.NoError(t, repo.Create(ctx, orphan))

	roots, err := reg.ListTree(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "1010", roots[0].Account.Code)
}

func TestRegistryDeactivateActivate(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo()
	reg := NewRegistry(repo, &fakeTxManager{})

	created, err := reg.Create(ctx, CreateInput{Code: "1000", Name: "Cash", Type: TypeAsset})
	require.NoError(t, err)

	deactivated, err := reg.Deactivate(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	// deactivating again is a no-op
	again, err := reg.Deactivate(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, again.Active)

	activated, err := reg.Activate(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, activated.Active)
}

func TestRegistryCorrectOpeningBalance(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo()
	reg := NewRegistry(repo, &fakeTxManager{})

	created, err := reg.Create(ctx, CreateInput{Code: "1000", Name: "Cash", Type: TypeAsset})
	require.NoError(t, err)

	corrected, err := reg.CorrectOpeningBalance(ctx, created.ID, types.MinorUnits(250_00))
	require.NoError(t, err)
	assert.Equal(t, types.MinorUnits(250_00), corrected.OpeningBalance)

	repo.postings[created.ID] = true
	_, err = reg.CorrectOpeningBalance(ctx, created.ID, types.MinorUnits(0))
	assert.True(t, apperror.IsCode(err, apperror.CodeBusinessRule))
}

func TestAccountTypeDebitNatural(t *testing.T) {
	assert.True(t, TypeAsset.DebitNatural())
	assert.True(t, TypeExpense.DebitNatural())
	assert.False(t, TypeLiability.DebitNatural())
	assert.False(t, TypeEquity.DebitNatural())
	assert.False(t, TypeIncome.DebitNatural())
}

func TestAccountSignedAmount(t *testing.T) {
	asset := NewAccount("1000", "Cash", TypeAsset)
	assert.Equal(t, types.MinorUnits(70_00), asset.SignedAmount(100_00, 30_00))

	income := NewAccount("4000", "Sales", TypeIncome)
	assert.Equal(t, types.MinorUnits(-70_00), income.SignedAmount(100_00, 30_00))
}
