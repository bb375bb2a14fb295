package posting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/core/types"

	"bizledger/internal/domain/accounts"
	"bizledger/internal/domain/documents/payment"
	"bizledger/internal/domain/documents/purchase"
	"bizledger/internal/domain/documents/sale"
	"bizledger/internal/domain/inventory"
	"bizledger/internal/domain/ledger"
)

// Mock objects

// txStore is an in-memory store the fake transaction manager can snapshot
// before the outermost callback and restore when it fails.
type txStore interface {
	snapshot() any
	restore(state any)
}

// fakeTxManager mimics transactional semantics over the mock stores: nested
// calls join the outer transaction, and an error from the outermost callback
// rolls every store back to its pre-transaction state.
type fakeTxManager struct {
	stores []txStore
	depth  int
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.depth > 0 {
		m.depth++
		defer func() { m.depth-- }()
		return fn(ctx)
	}

	states := make([]any, len(m.stores))
	for i, s := range m.stores {
		states[i] = s.snapshot()
	}

	m.depth++
	err := fn(ctx)
	m.depth--

	if err != nil {
		for i, s := range m.stores {
			s.restore(states[i])
		}
	}
	return err
}

type mockAccountRepo struct {
	accounts map[id.ID]*accounts.Account
}

func (m *mockAccountRepo) Create(ctx context.Context, a *accounts.Account) error {
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountRepo) Update(ctx context.Context, a *accounts.Account) error {
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountRepo) GetByID(ctx context.Context, accountID id.ID) (*accounts.Account, error) {
	if a, ok := m.accounts[accountID]; ok {
		return a, nil
	}
	return nil, apperror.NewNotFound("account", accountID.String())
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
	legs       []ledger.Leg
	failCreate error
}

func (m *mockLegRepo) snapshot() any { return append([]ledger.Leg(nil), m.legs...) }

func (m *mockLegRepo) restore(state any) { m.legs = state.([]ledger.Leg) }

func (m *mockLegRepo) CreateLegs(ctx context.Context, legs []ledger.Leg) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	m.legs = append(m.legs, legs...)
	return nil
}

func (m *mockLegRepo) GetSet(ctx context.Context, setID id.ID) ([]ledger.Leg, error) {
	var out []ledger.Leg
	for _, l := range m.legs {
		if l.SetID == setID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLegRepo) SumByAccount(ctx context.Context, accountID id.ID, asOf *time.Time) (types.MinorUnits, types.MinorUnits, error) {
	return 0, 0, nil
}

func (m *mockLegRepo) ListByAccount(ctx context.Context, accountID id.ID, from, to time.Time, limit, offset int) ([]ledger.Leg, error) {
	return nil, nil
}

func (m *mockLegRepo) SumWindowPrefix(ctx context.Context, accountID id.ID, from, to time.Time, prefixRows int) (types.MinorUnits, types.MinorUnits, error) {
	return 0, 0, nil
}

func (m *mockLegRepo) SumsPerAccount(ctx context.Context, asOf *time.Time) ([]ledger.AccountSums, error) {
	return nil, nil
}

type lotKey struct {
	product   id.ID
	warehouse id.ID
	batch     string
}

type mockStockRepo struct {
	lots      map[lotKey]*inventory.Lot
	movements []inventory.Movement
}

type stockState struct {
	lots      map[lotKey]*inventory.Lot
	movements []inventory.Movement
}

func (m *mockStockRepo) snapshot() any {
	lots := make(map[lotKey]*inventory.Lot, len(m.lots))
	for k, v := range m.lots {
		cp := *v
		lots[k] = &cp
	}
	return stockState{lots: lots, movements: append([]inventory.Movement(nil), m.movements...)}
}

func (m *mockStockRepo) restore(state any) {
	s := state.(stockState)
	m.lots = s.lots
	m.movements = s.movements
}

func (m *mockStockRepo) store(lot *inventory.Lot) {
	cp := *lot
	m.lots[lotKey{product: lot.ProductID, warehouse: lot.WarehouseID, batch: lot.Batch}] = &cp
}

func (m *mockStockRepo) CreateLot(ctx context.Context, lot *inventory.Lot) error {
	m.store(lot)
	return nil
}

func (m *mockStockRepo) UpdateLot(ctx context.Context, lot *inventory.Lot) error {
	m.store(lot)
	return nil
}

func (m *mockStockRepo) GetLot(ctx context.Context, productID, warehouseID id.ID, batch string) (*inventory.Lot, error) {
	if lot, ok := m.lots[lotKey{product: productID, warehouse: warehouseID, batch: batch}]; ok {
		cp := *lot
		return &cp, nil
	}
	return nil, apperror.NewNotFound("lot", batch)
}

func (m *mockStockRepo) GetLotForUpdate(ctx context.Context, productID, warehouseID id.ID, batch string) (*inventory.Lot, error) {
	return m.GetLot(ctx, productID, warehouseID, batch)
}

func (m *mockStockRepo) PickLotForUpdate(ctx context.Context, productID, warehouseID id.ID) (*inventory.Lot, error) {
	for _, lot := range m.lots {
		if lot.ProductID == productID && lot.WarehouseID == warehouseID {
			cp := *lot
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("lot", productID.String())
}

func (m *mockStockRepo) ListLots(ctx context.Context, filter inventory.LotFilter) ([]inventory.Lot, error) {
	return nil, nil
}

func (m *mockStockRepo) SumOnHand(ctx context.Context, productID id.ID, warehouseID *id.ID, batch *string) (types.Quantity, error) {
	return 0, nil
}

func (m *mockStockRepo) ListLowStock(ctx context.Context, scope inventory.LowStockScope) ([]inventory.LowStockRow, error) {
	return nil, nil
}

func (m *mockStockRepo) ListExpiring(ctx context.Context, deadline time.Time) ([]inventory.Lot, error) {
	return nil, nil
}

func (m *mockStockRepo) CreateMovements(ctx context.Context, movements []inventory.Movement) error {
	m.movements = append(m.movements, movements...)
	return nil
}

func (m *mockStockRepo) ListMovements(ctx context.Context, filter inventory.MovementFilter) ([]inventory.Movement, error) {
	return m.movements, nil
}

type mockSaleRepo struct {
	docs map[id.ID]*sale.Sale
}

func (m *mockSaleRepo) snapshot() any {
	docs := make(map[id.ID]*sale.Sale, len(m.docs))
	for k, v := range m.docs {
		cp := *v
		cp.Lines = append([]sale.Line(nil), v.Lines...)
		docs[k] = &cp
	}
	return docs
}

func (m *mockSaleRepo) restore(state any) { m.docs = state.(map[id.ID]*sale.Sale) }

func (m *mockSaleRepo) Create(ctx context.Context, s *sale.Sale) error {
	m.docs[s.ID] = s
	return nil
}

func (m *mockSaleRepo) Update(ctx context.Context, s *sale.Sale) error {
	m.docs[s.ID] = s
	return nil
}

func (m *mockSaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	if s, ok := m.docs[saleID]; ok {
		return s, nil
	}
	return nil, apperror.NewNotFound("sale", saleID.String())
}

func (m *mockSaleRepo) GetForUpdate(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	return m.GetByID(ctx, saleID)
}

func (m *mockSaleRepo) List(ctx context.Context, filter sale.ListFilter) ([]sale.Sale, error) {
	return nil, nil
}

type mockPurchaseRepo struct {
	docs map[id.ID]*purchase.Purchase
}

func (m *mockPurchaseRepo) snapshot() any {
	docs := make(map[id.ID]*purchase.Purchase, len(m.docs))
	for k, v := range m.docs {
		cp := *v
		cp.Lines = append([]purchase.Line(nil), v.Lines...)
		docs[k] = &cp
	}
	return docs
}

func (m *mockPurchaseRepo) restore(state any) { m.docs = state.(map[id.ID]*purchase.Purchase) }

func (m *mockPurchaseRepo) Create(ctx context.Context, p *purchase.Purchase) error {
	m.docs[p.ID] = p
	return nil
}

func (m *mockPurchaseRepo) Update(ctx context.Context, p *purchase.Purchase) error {
	m.docs[p.ID] = p
	return nil
}

func (m *mockPurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	if p, ok := m.docs[purchaseID]; ok {
		return p, nil
	}
	return nil, apperror.NewNotFound("purchase", purchaseID.String())
}

func (m *mockPurchaseRepo) GetForUpdate(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	return m.GetByID(ctx, purchaseID)
}

func (m *mockPurchaseRepo) List(ctx context.Context, filter purchase.ListFilter) ([]purchase.Purchase, error) {
	return nil, nil
}

type mockPaymentRepo struct {
	docs map[id.ID]*payment.Payment
}

func (m *mockPaymentRepo) snapshot() any {
	docs := make(map[id.ID]*payment.Payment, len(m.docs))
	for k, v := range m.docs {
		cp := *v
		docs[k] = &cp
	}
	return docs
}

func (m *mockPaymentRepo) restore(state any) { m.docs = state.(map[id.ID]*payment.Payment) }

func (m *mockPaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	m.docs[p.ID] = p
	return nil
}

func (m *mockPaymentRepo) Update(ctx context.Context, p *payment.Payment) error {
	m.docs[p.ID] = p
	return nil
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*payment.Payment, error) {
	if p, ok := m.docs[paymentID]; ok {
		return p, nil
	}
	return nil, apperror.NewNotFound("payment", paymentID.String())
}

func (m *mockPaymentRepo) GetForUpdate(ctx context.Context, paymentID id.ID) (*payment.Payment, error) {
	return m.GetByID(ctx, paymentID)
}

func (m *mockPaymentRepo) List(ctx context.Context, filter payment.ListFilter) ([]payment.Payment, error) {
	return nil, nil
}

type captureAudit struct {
	entries []AuditEntry
}

func (c *captureAudit) snapshot() any { return append([]AuditEntry(nil), c.entries...) }

func (c *captureAudit) restore(state any) { c.entries = state.([]AuditEntry) }

func (c *captureAudit) Record(ctx context.Context, entry AuditEntry) error {
	c.entries = append(c.entries, entry)
	return nil
}

// Test fixture

type fixture struct {
	engine    *Engine
	stock     *inventory.Engine
	accounts  *mockAccountRepo
	legs      *mockLegRepo
	stockRepo *mockStockRepo
	sales     *mockSaleRepo
	purchases *mockPurchaseRepo
	payments  *mockPaymentRepo
	audit     *captureAudit

	byCode map[string]id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		accounts:  &mockAccountRepo{accounts: make(map[id.ID]*accounts.Account)},
		legs:      &mockLegRepo{},
		stockRepo: &mockStockRepo{lots: make(map[lotKey]*inventory.Lot)},
		sales:     &mockSaleRepo{docs: make(map[id.ID]*sale.Sale)},
		purchases: &mockPurchaseRepo{docs: make(map[id.ID]*purchase.Purchase)},
		payments:  &mockPaymentRepo{docs: make(map[id.ID]*payment.Payment)},
		audit:     &captureAudit{},
		byCode:    make(map[string]id.ID),
	}

	chart := []struct {
		code string
		name string
		typ  accounts.AccountType
	}{
		{"1000", "Cash", accounts.TypeAsset},
		{"1100", "Accounts Receivable", accounts.TypeAsset},
		{"1200", "Inventory", accounts.TypeAsset},
		{"2100", "Accounts Payable", accounts.TypeLiability},
		{"4000", "Sales Revenue", accounts.TypeIncome},
		{"5000", "Cost of Goods Sold", accounts.TypeExpense},
	}
	for _, c := range chart {
		a := accounts.NewAccount(c.code, c.name, c.typ)
		f.accounts.accounts[a.ID] = a
		f.byCode[c.code] = a.ID
	}

	txm := &fakeTxManager{stores: []txStore{
		f.legs, f.stockRepo, f.sales, f.purchases, f.payments, f.audit,
	}}
	registry := accounts.NewRegistry(f.accounts, txm)
	poster := ledger.NewPoster(f.legs, f.accounts, txm)
	f.stock = inventory.NewEngine(f.stockRepo, txm)

	engine, err := NewEngine(registry, poster, f.stock, f.sales, f.purchases, f.payments, f.audit, txm, DefaultAccountConfig())
	require.NoError(t, err)
	f.engine = engine
	return f
}

func (f *fixture) receiveStock(t *testing.T, productID, warehouseID id.ID, batch string, quantity float64, cost types.MinorUnits) {
	t.Helper()
	_, err := f.stock.Receive(context.Background(), inventory.ReceiveInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Batch:       batch,
		Quantity:    types.NewQuantityFromFloat64(quantity),
		CostPrice:   cost,
	})
	require.NoError(t, err)
}

// legAmount finds the single leg hitting the given account and returns its
// debit or credit.
func (f *fixture) legAmount(t *testing.T, accountCode string) (debit, credit types.MinorUnits) {
	t.Helper()
	accountID := f.byCode[accountCode]
	found := false
	for _, l := range f.legs.legs {
		if l.AccountID == accountID {
			require.False(t, found, "more than one leg on account %s", accountCode)
			found = true
			debit, credit = l.Debit, l.Credit
		}
	}
	require.True(t, found, "no leg on account %s", accountCode)
	return debit, credit
}

func TestEngine_FinalizeSale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	productID, warehouseID := id.New(), id.New()
	f.receiveStock(t, productID, warehouseID, "B-001", 10, 600) // cost 6.00/unit

	doc := sale.NewSale("Acme Ltd", warehouseID, sale.PaymentOnAccount)
	doc.Number = "SO-2026-00001"
	doc.Lines = []sale.Line{{
		LineID:    id.New(),
		SaleID:    doc.ID,
		LineNo:    1,
		ProductID: productID,
		Quantity:  types.NewQuantityFromFloat64(2),
		UnitPrice: 1500,
		Discount:  types.PercentageDiscount(decimal.NewFromInt(10)),
	}}
	require.NoError(t, f.sales.Create(ctx, doc))

	posted, err := f.engine.FinalizeSale(ctx, doc.ID)
	require.NoError(t, err)

	assert.True(t, posted.Posted)
	require.NotNil(t, posted.LedgerSetID)

	// Revenue 2 * 15.00 less 10% = 27.00; cost 2 * 6.00 = 12.00.
	debit, _ := f.legAmount(t, "1100")
	assert.Equal(t, types.MinorUnits(2700), debit)
	_, credit := f.legAmount(t, "4000")
	assert.Equal(t, types.MinorUnits(2700), credit)
	debit, _ = f.legAmount(t, "5000")
	assert.Equal(t, types.MinorUnits(1200), debit)
	_, credit = f.legAmount(t, "1200")
	assert.Equal(t, types.MinorUnits(1200), credit)

	// Stock went down.
	lot, err := f.stockRepo.GetLot(ctx, productID, warehouseID, "B-001")
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(8), lot.Quantity)

	// One audit entry for the document.
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, "sale", f.audit.entries[0].DocumentType)
	assert.Equal(t, doc.ID, f.audit.entries[0].DocumentID)
	assert.Equal(t, *posted.LedgerSetID, f.audit.entries[0].SetID)
}

func TestEngine_FinalizeSale_CashDebitsCash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	productID, warehouseID := id.New(), id.New()
	f.receiveStock(t, productID, warehouseID, "B-001", 5, 100)

	doc := sale.NewSale("Walk-in", warehouseID, sale.PaymentCash)
	doc.Number = "SO-2026-00002"
	doc.Lines = []sale.Line{{
		LineID: id.New(), SaleID: doc.ID, LineNo: 1, ProductID: productID,
		Quantity: types.NewQuantityFromFloat64(1), UnitPrice: 500,
	}}
	require.NoError(t, f.sales.Create(ctx, doc))

	_, err := f.engine.FinalizeSale(ctx, doc.ID)
	require.NoError(t, err)

	debit, _ := f.legAmount(t, "1000")
	assert.Equal(t, types.MinorUnits(500), debit)
}

func TestEngine_FinalizeSale_AlreadyPosted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := sale.NewSale("Acme Ltd", id.New(), sale.PaymentOnAccount)
	doc.Number = "SO-2026-00003"
	doc.MarkPosted()
	require.NoError(t, f.sales.Create(ctx, doc))

	_, err := f.engine.FinalizeSale(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeBusinessRule))
}

func TestEngine_FinalizeSale_InsufficientStockPostsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	productID, warehouseID := id.New(), id.New()
	f.receiveStock(t, productID, warehouseID, "B-001", 1, 100)

	doc := sale.NewSale("Acme Ltd", warehouseID, sale.PaymentOnAccount)
	doc.Number = "SO-2026-00004"
	doc.Lines = []sale.Line{{
		LineID: id.New(), SaleID: doc.ID, LineNo: 1, ProductID: productID,
		Quantity: types.NewQuantityFromFloat64(3), UnitPrice: 500,
	}}
	require.NoError(t, f.sales.Create(ctx, doc))

	_, err := f.engine.FinalizeSale(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	assert.Empty(t, f.legs.legs, "no ledger legs may exist")
	assert.Empty(t, f.audit.entries)

	stored, err := f.sales.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, stored.Posted)
}

func TestEngine_FinalizeSale_LedgerFailureRollsBackStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	productID, warehouseID := id.New(), id.New()
	f.receiveStock(t, productID, warehouseID, "B-001", 10, 600)

	f.legs.failCreate = errors.New("insert legs: connection reset")

	doc := sale.NewSale("Acme Ltd", warehouseID, sale.PaymentOnAccount)
	doc.Number = "SO-2026-00005"
	doc.Lines = []sale.Line{{
		LineID: id.New(), SaleID: doc.ID, LineNo: 1, ProductID: productID,
		Quantity: types.NewQuantityFromFloat64(2), UnitPrice: 1500,
	}}
	require.NoError(t, f.sales.Create(ctx, doc))

	_, err := f.engine.FinalizeSale(ctx, doc.ID)
	require.Error(t, err)

	// The stock issue succeeded before the leg insert failed; the rollback
	// must return the issued quantity.
	lot, err := f.stockRepo.GetLot(ctx, productID, warehouseID, "B-001")
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(10), lot.Quantity)

	// Only the receipt movement from receiveStock may remain.
	require.Len(t, f.stockRepo.movements, 1)
	assert.Equal(t, inventory.RecordTypeReceipt, f.stockRepo.movements[0].RecordType)

	assert.Empty(t, f.legs.legs)
	assert.Empty(t, f.audit.entries)

	stored, err := f.sales.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, stored.Posted)
	assert.Nil(t, stored.LedgerSetID)
}

func TestEngine_FinalizeSale_FullyDiscountedLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	productID, warehouseID := id.New(), id.New()
	f.receiveStock(t, productID, warehouseID, "B-001", 10, 600)

	doc := sale.NewSale("Acme Ltd", warehouseID, sale.PaymentOnAccount)
	doc.Number = "SO-2026-00006"
	doc.Lines = []sale.Line{{
		LineID: id.New(), SaleID: doc.ID, LineNo: 1, ProductID: productID,
		Quantity: types.NewQuantityFromFloat64(2), UnitPrice: 1500,
		Discount: types.PercentageDiscount(decimal.NewFromInt(100)),
	}}
	require.NoError(t, f.sales.Create(ctx, doc))

	posted, err := f.engine.FinalizeSale(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, posted.Posted)
	require.NotNil(t, posted.LedgerSetID)

	// A free-of-charge sale posts only the cost pair.
	require.Len(t, f.legs.legs, 2)
	debit, _ := f.legAmount(t, "5000")
	assert.Equal(t, types.MinorUnits(1200), debit)
	_, credit := f.legAmount(t, "1200")
	assert.Equal(t, types.MinorUnits(1200), credit)

	lot, err := f.stockRepo.GetLot(ctx, productID, warehouseID, "B-001")
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(8), lot.Quantity)
}

func TestEngine_ReceivePurchase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	productID, warehouseID := id.New(), id.New()
	expiry := time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)

	doc := purchase.NewPurchase("Supplies Inc", warehouseID, purchase.PaymentOnAccount)
	doc.Number = "PU-2026-00001"
	doc.Lines = []purchase.Line{{
		LineID: id.New(), PurchaseID: doc.ID, LineNo: 1, ProductID: productID,
		Batch: "LOT-7", ExpiryDate: &expiry,
		Quantity: types.NewQuantityFromFloat64(20), UnitCost: 250,
	}}
	require.NoError(t, f.purchases.Create(ctx, doc))

	posted, err := f.engine.ReceivePurchase(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, posted.Posted)

	// Inventory up 20 * 2.50 = 50.00 against payable.
	debit, _ := f.legAmount(t, "1200")
	assert.Equal(t, types.MinorUnits(5000), debit)
	_, credit := f.legAmount(t, "2100")
	assert.Equal(t, types.MinorUnits(5000), credit)

	lot, err := f.stockRepo.GetLot(ctx, productID, warehouseID, "LOT-7")
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(20), lot.Quantity)
	assert.Equal(t, types.MinorUnits(250), lot.CostPrice)
	require.NotNil(t, lot.ExpiryDate)
	assert.True(t, lot.ExpiryDate.Equal(expiry))

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, "purchase", f.audit.entries[0].DocumentType)
}

func TestEngine_ReceivePurchase_CashCreditsCash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := purchase.NewPurchase("Supplies Inc", id.New(), purchase.PaymentCash)
	doc.Number = "PU-2026-00002"
	doc.Lines = []purchase.Line{{
		LineID: id.New(), PurchaseID: doc.ID, LineNo: 1, ProductID: id.New(),
		Quantity: types.NewQuantityFromFloat64(4), UnitCost: 100,
	}}
	require.NoError(t, f.purchases.Create(ctx, doc))

	_, err := f.engine.ReceivePurchase(ctx, doc.ID)
	require.NoError(t, err)

	_, credit := f.legAmount(t, "1000")
	assert.Equal(t, types.MinorUnits(400), credit)
}

func TestEngine_RecordPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	incoming := payment.NewPayment(payment.DirectionIncoming, "Acme Ltd", 2700)
	incoming.Number = "PAY-2026-00001"
	require.NoError(t, f.payments.Create(ctx, incoming))

	posted, err := f.engine.RecordPayment(ctx, incoming.ID)
	require.NoError(t, err)
	assert.True(t, posted.Posted)
	require.NotNil(t, posted.LedgerSetID)

	// Incoming: debit cash, credit receivable.
	debit, _ := f.legAmount(t, "1000")
	assert.Equal(t, types.MinorUnits(2700), debit)
	_, credit := f.legAmount(t, "1100")
	assert.Equal(t, types.MinorUnits(2700), credit)
}

func TestEngine_RecordPayment_Outgoing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	outgoing := payment.NewPayment(payment.DirectionOutgoing, "Supplies Inc", 5000)
	outgoing.Number = "PAY-2026-00002"
	require.NoError(t, f.payments.Create(ctx, outgoing))

	_, err := f.engine.RecordPayment(ctx, outgoing.ID)
	require.NoError(t, err)

	// Outgoing: debit payable, credit cash.
	debit, _ := f.legAmount(t, "2100")
	assert.Equal(t, types.MinorUnits(5000), debit)
	_, credit := f.legAmount(t, "1000")
	assert.Equal(t, types.MinorUnits(5000), credit)
}

func TestEngine_RecordPayment_AlreadyPosted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := payment.NewPayment(payment.DirectionIncoming, "Acme Ltd", 100)
	doc.Number = "PAY-2026-00003"
	doc.MarkPosted()
	require.NoError(t, f.payments.Create(ctx, doc))

	_, err := f.engine.RecordPayment(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeBusinessRule))
}

func TestNewEngine_RejectsIncompleteConfig(t *testing.T) {
	f := newFixture(t)
	txm := &fakeTxManager{}
	registry := accounts.NewRegistry(f.accounts, txm)
	poster := ledger.NewPoster(f.legs, f.accounts, txm)

	cfg := DefaultAccountConfig()
	cfg.COGS = ""
	_, err := NewEngine(registry, poster, f.stock, f.sales, f.purchases, f.payments, nil, txm, cfg)
	require.Error(t, err)
}
