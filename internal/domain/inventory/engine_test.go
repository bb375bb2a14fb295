package inventory

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
)

// Mock objects

type fakeTxManager struct{}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type lotKey struct {
	product   id.ID
	warehouse id.ID
	batch     string
}

type mockStockRepo struct {
	lots      map[lotKey]*Lot
	movements []Movement
}

func newMockStockRepo() *mockStockRepo {
	return &mockStockRepo{lots: make(map[lotKey]*Lot)}
}

func (m *mockStockRepo) key(lot *Lot) lotKey {
	return lotKey{product: lot.ProductID, warehouse: lot.WarehouseID, batch: lot.Batch}
}

func (m *mockStockRepo) CreateLot(ctx context.Context, lot *Lot) error {
	cp := *lot
	m.lots[m.key(lot)] = &cp
	return nil
}

func (m *mockStockRepo) UpdateLot(ctx context.Context, lot *Lot) error {
	cp := *lot
	m.lots[m.key(lot)] = &cp
	return nil
}

func (m *mockStockRepo) GetLot(ctx context.Context, productID, warehouseID id.ID, batch string) (*Lot, error) {
	lot, ok := m.lots[lotKey{product: productID, warehouse: warehouseID, batch: batch}]
	if !ok {
		return nil, apperror.NewNotFound("lot", batch)
	}
	cp := *lot
	return &cp, nil
}

func (m *mockStockRepo) GetLotForUpdate(ctx context.Context, productID, warehouseID id.ID, batch string) (*Lot, error) {
	return m.GetLot(ctx, productID, warehouseID, batch)
}

// PickLotForUpdate mirrors the SQL ordering: earliest expiry first with null
// expiry last, ties broken by creation time.
func (m *mockStockRepo) PickLotForUpdate(ctx context.Context, productID, warehouseID id.ID) (*Lot, error) {
	var candidates []*Lot
	for _, lot := range m.lots {
		if lot.ProductID == productID && lot.WarehouseID == warehouseID {
			candidates = append(candidates, lot)
		}
	}
	if len(candidates) == 0 {
		return nil, apperror.NewNotFound("lot", productID.String())
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		switch {
		case a.ExpiryDate == nil && b.ExpiryDate == nil:
			return a.CreatedAt.Before(b.CreatedAt)
		case a.ExpiryDate == nil:
			return false
		case b.ExpiryDate == nil:
			return true
		case !a.ExpiryDate.Equal(*b.ExpiryDate):
			return a.ExpiryDate.Before(*b.ExpiryDate)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})

	cp := *candidates[0]
	return &cp, nil
}

func (m *mockStockRepo) ListLots(ctx context.Context, filter LotFilter) ([]Lot, error) {
	var out []Lot
	for _, lot := range m.lots {
		if filter.ProductID != nil && lot.ProductID != *filter.ProductID {
			continue
		}
		if filter.WarehouseID != nil && lot.WarehouseID != *filter.WarehouseID {
			continue
		}
		if filter.ExcludeZero && lot.Quantity.IsZero() {
			continue
		}
		out = append(out, *lot)
	}
	return out, nil
}

func (m *mockStockRepo) SumOnHand(ctx context.Context, productID id.ID, warehouseID *id.ID, batch *string) (types.Quantity, error) {
	var total types.Quantity
	for _, lot := range m.lots {
		if lot.ProductID != productID {
			continue
		}
		if warehouseID != nil && lot.WarehouseID != *warehouseID {
			continue
		}
		if batch != nil && lot.Batch != *batch {
			continue
		}
		total += lot.Quantity
	}
	return total, nil
}

func (m *mockStockRepo) ListLowStock(ctx context.Context, scope LowStockScope) ([]LowStockRow, error) {
	return nil, nil
}

func (m *mockStockRepo) ListExpiring(ctx context.Context, deadline time.Time) ([]Lot, error) {
	var out []Lot
	for _, lot := range m.lots {
		if lot.ExpiryDate != nil && !lot.ExpiryDate.After(deadline) && lot.Quantity.IsPositive() {
			out = append(out, *lot)
		}
	}
	return out, nil
}

func (m *mockStockRepo) CreateMovements(ctx context.Context, movements []Movement) error {
	m.movements = append(m.movements, movements...)
	return nil
}

func (m *mockStockRepo) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	return m.movements, nil
}

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func TestEngine_Receive_CreatesAndIncrements(t *testing.T) {
	repo := newMockStockRepo()
	engine := NewEngine(repo, &fakeTxManager{})
	ctx := context.Background()

	productID, warehouseID := id.New(), id.New()

	lot, err := engine.Receive(ctx, ReceiveInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Batch:       "B-001",
		Quantity:    qty(10),
		CostPrice:   500,
	})
	require.NoError(t, err)
	assert.Equal(t, qty(10), lot.Quantity)
	assert.Equal(t, types.MinorUnits(500), lot.CostPrice)

	// Second receive of the same batch increments and keeps the original cost.
	lot, err = engine.Receive(ctx, ReceiveInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Batch:       "B-001",
		Quantity:    qty(5),
		CostPrice:   999,
	})
	require.NoError(t, err)
	assert.Equal(t, qty(15), lot.Quantity)
	assert.Equal(t, types.MinorUnits(500), lot.CostPrice)

	require.Len(t, repo.movements, 2)
	assert.Equal(t, RecordTypeReceipt, repo.movements[0].RecordType)
	assert.Equal(t, SourceReceive, repo.movements[0].Source)
}

func TestEngine_Receive_Validation(t *testing.T) {
	engine := NewEngine(newMockStockRepo(), &fakeTxManager{})
	ctx := context.Background()

	_, err := engine.Receive(ctx, ReceiveInput{ProductID: id.New(), WarehouseID: id.New(), Quantity: 0})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = engine.Receive(ctx, ReceiveInput{ProductID: id.New(), WarehouseID: id.New(), Quantity: qty(1), CostPrice: -1})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestEngine_Issue_InsufficientStock(t *testing.T) {
	repo := newMockStockRepo()
	engine := NewEngine(repo, &fakeTxManager{})
	ctx := context.Background()

	productID, warehouseID := id.New(), id.New()
	_, err := engine.Receive(ctx, ReceiveInput{
		ProductID: productID, WarehouseID: warehouseID, Batch: "B-001",
		Quantity: qty(3), CostPrice: 100,
	})
	require.NoError(t, err)

	batch := "B-001"
	_, err = engine.Issue(ctx, IssueInput{
		ProductID: productID, WarehouseID: warehouseID, Batch: &batch,
		Quantity: qty(5),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	// The lot is untouched and no expense movement was written.
	lot, err := repo.GetLot(ctx, productID, warehouseID, "B-001")
	require.NoError(t, err)
	assert.Equal(t, qty(3), lot.Quantity)
	require.Len(t, repo.movements, 1)
	assert.Equal(t, RecordTypeReceipt, repo.movements[0].RecordType)
}

func TestEngine_Issue_ExactQuantityLeavesEmptyLot(t *testing.T) {
	repo := newMockStockRepo()
	engine := NewEngine(repo, &fakeTxManager{})
	ctx := context.Background()

	productID, warehouseID := id.New(), id.New()
	_, err := engine.Receive(ctx, ReceiveInput{
		ProductID: productID, WarehouseID: warehouseID, Batch: "B-001",
		Quantity: qty(3), CostPrice: 100,
	})
	require.NoError(t, err)

	batch := "B-001"
	lot, err := engine.Issue(ctx, IssueInput{
		ProductID: productID, WarehouseID: warehouseID, Batch: &batch,
		Quantity: qty(3),
	})
	require.NoError(t, err)
	assert.True(t, lot.Quantity.IsZero())

	// Zero-quantity lots survive for history.
	stored, err := repo.GetLot(ctx, productID, warehouseID, "B-001")
	require.NoError(t, err)
	assert.True(t, stored.Quantity.IsZero())
}

func TestEngine_Issue_PicksEarliestExpiry(t *testing.T) {
	repo := newMockStockRepo()
	engine := NewEngine(repo, &fakeTxManager{})
	ctx := context.Background()

	productID, warehouseID := id.New(), id.New()
	late := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	soon := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	_, err := engine.Receive(ctx, ReceiveInput{
		ProductID: productID, WarehouseID: warehouseID, Batch: "LATE",
		ExpiryDate: &late, Quantity: qty(10), CostPrice: 100,
	})
	require.NoError(t, err)
	_, err = engine.Receive(ctx, ReceiveInput{
		ProductID: productID, WarehouseID: warehouseID, Batch: "SOON",
		ExpiryDate: &soon, Quantity: qty(10), CostPrice: 100,
	})
	require.NoError(t, err)
	_, err = engine.Receive(ctx, ReceiveInput{
		ProductID: productID, WarehouseID: warehouseID, Batch: "NOEXP",
		Quantity: qty(10), CostPrice: 100,
	})
	require.NoError(t, err)

	lot, err := engine.Issue(ctx, IssueInput{
		ProductID: productID, WarehouseID: warehouseID,
		Quantity: qty(4),
	})
	require.NoError(t, err)
	assert.Equal(t, "SOON", lot.Batch)
	assert.Equal(t, qty(6), lot.Quantity)
}

func TestEngine_Issue_NeverSplitsAcrossLots(t *testing.T) {
	repo := newMockStockRepo()
	engine := NewEngine(repo, &fakeTxManager{})
	ctx := context.Background()

	productID, warehouseID := id.New(), id.New()
	soon := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	// 3 units in the picked lot, 10 more elsewhere. Requesting 5 must fail
	// rather than draw from the second lot.
	_, err := engine.Receive(ctx, ReceiveInput{
		ProductID: productID, WarehouseID: warehouseID, Batch: "SOON",
		ExpiryDate: &soon, Quantity: qty(3), CostPrice: 100,
	})
	require.NoError(t, err)
	_, err = engine.Receive(ctx, ReceiveInput{
		ProductID: productID, WarehouseID: warehouseID, Batch: "OTHER",
		Quantity: qty(10), CostPrice: 100,
	})
	require.NoError(t, err)

	_, err = engine.Issue(ctx, IssueInput{
		ProductID: productID, WarehouseID: warehouseID,
		Quantity: qty(5),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
}

func TestEngine_Adjust(t *testing.T) {
	repo := newMockStockRepo()
	engine := NewEngine(repo, &fakeTxManager{})
	ctx := context.Background()

	productID, warehouseID := id.New(), id.New()
	_, err := engine.Receive(ctx, ReceiveInput{
		ProductID: productID, WarehouseID: warehouseID, Batch: "B-001",
		Quantity: qty(10), CostPrice: 100,
	})
	require.NoError(t, err)

	// Downward adjustment records an expense movement with the delta.
	lot, err := engine.Adjust(ctx, AdjustInput{
		ProductID: productID, WarehouseID: warehouseID, Batch: "B-001",
		NewQuantity: qty(7), Reason: "cycle count",
	})
	require.NoError(t, err)
	assert.Equal(t, qty(7), lot.Quantity)

	last := repo.movements[len(repo.movements)-1]
	assert.Equal(t, RecordTypeExpense, last.RecordType)
	assert.Equal(t, SourceAdjust, last.Source)
	assert.Equal(t, qty(3), last.Quantity)
	assert.Equal(t, "cycle count", last.Reason)

	// Upward adjustment records a receipt.
	_, err = engine.Adjust(ctx, AdjustInput{
		ProductID: productID, WarehouseID: warehouseID, Batch: "B-001",
		NewQuantity: qty(9), Reason: "found stock",
	})
	require.NoError(t, err)
	last = repo.movements[len(repo.movements)-1]
	assert.Equal(t, RecordTypeReceipt, last.RecordType)
	assert.Equal(t, qty(2), last.Quantity)

	// Setting the same quantity is a no-op.
	before := len(repo.movements)
	_, err = engine.Adjust(ctx, AdjustInput{
		ProductID: productID, WarehouseID: warehouseID, Batch: "B-001",
		NewQuantity: qty(9), Reason: "recount",
	})
	require.NoError(t, err)
	assert.Len(t, repo.movements, before)
}

func TestEngine_Adjust_Validation(t *testing.T) {
	engine := NewEngine(newMockStockRepo(), &fakeTxManager{})
	ctx := context.Background()

	_, err := engine.Adjust(ctx, AdjustInput{
		ProductID: id.New(), WarehouseID: id.New(), Batch: "B-001",
		NewQuantity: qty(-1), Reason: "x",
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = engine.Adjust(ctx, AdjustInput{
		ProductID: id.New(), WarehouseID: id.New(), Batch: "B-001",
		NewQuantity: qty(1),
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "missing reason must be rejected")
}

func TestEngine_Transfer(t *testing.T) {
	repo := newMockStockRepo()
	engine := NewEngine(repo, &fakeTxManager{})
	ctx := context.Background()

	productID := id.New()
	src, dst := id.New(), id.New()
	expiry := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	_, err := engine.Receive(ctx, ReceiveInput{
		ProductID: productID, WarehouseID: src, Batch: "B-001",
		ExpiryDate: &expiry, Quantity: qty(10), CostPrice: 250,
	})
	require.NoError(t, err)

	result, err := engine.Transfer(ctx, TransferInput{
		ProductID:       productID,
		FromWarehouseID: src,
		ToWarehouseID:   dst,
		Quantity:        qty(4),
	})
	require.NoError(t, err)

	assert.Equal(t, qty(6), result.From.Quantity)
	assert.Equal(t, qty(4), result.To.Quantity)

	// Destination lot inherits batch, expiry and cost from the source.
	assert.Equal(t, "B-001", result.To.Batch)
	require.NotNil(t, result.To.ExpiryDate)
	assert.True(t, result.To.ExpiryDate.Equal(expiry))
	assert.Equal(t, types.MinorUnits(250), result.To.CostPrice)

	// One expense leg at the source, one receipt leg at the destination.
	last2 := repo.movements[len(repo.movements)-2:]
	assert.Equal(t, RecordTypeExpense, last2[0].RecordType)
	assert.Equal(t, src, last2[0].WarehouseID)
	assert.Equal(t, RecordTypeReceipt, last2[1].RecordType)
	assert.Equal(t, dst, last2[1].WarehouseID)
	assert.Equal(t, SourceTransfer, last2[0].Source)
}

func TestEngine_Transfer_InsufficientLeavesBothUntouched(t *testing.T) {
	repo := newMockStockRepo()
	engine := NewEngine(repo, &fakeTxManager{})
	ctx := context.Background()

	productID := id.New()
	src, dst := id.New(), id.New()
	_, err := engine.Receive(ctx, ReceiveInput{
		ProductID: productID, WarehouseID: src, Batch: "B-001",
		Quantity: qty(2), CostPrice: 100,
	})
	require.NoError(t, err)

	_, err = engine.Transfer(ctx, TransferInput{
		ProductID:       productID,
		FromWarehouseID: src,
		ToWarehouseID:   dst,
		Quantity:        qty(5),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	srcLot, err := repo.GetLot(ctx, productID, src, "B-001")
	require.NoError(t, err)
	assert.Equal(t, qty(2), srcLot.Quantity)

	_, err = repo.GetLot(ctx, productID, dst, "B-001")
	assert.True(t, apperror.IsNotFound(err), "no destination lot may appear")
}

func TestEngine_Transfer_SameWarehouse(t *testing.T) {
	engine := NewEngine(newMockStockRepo(), &fakeTxManager{})
	warehouseID := id.New()

	_, err := engine.Transfer(context.Background(), TransferInput{
		ProductID:       id.New(),
		FromWarehouseID: warehouseID,
		ToWarehouseID:   warehouseID,
		Quantity:        qty(1),
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}
