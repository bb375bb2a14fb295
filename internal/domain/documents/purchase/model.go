// Package purchase holds the purchase document: goods received into stock
// and recognized as inventory against payable or cash.
package purchase

import (
	"context"
	"time"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/entity"
	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
)

// PaymentMethod selects the credit side of the inventory posting.
type PaymentMethod string

const (
	// PaymentOnAccount credits accounts payable
	PaymentOnAccount PaymentMethod = "on_account"
	// PaymentCash credits the cash account directly
	PaymentCash PaymentMethod = "cash"
)

// Valid reports whether the payment method is known.
func (m PaymentMethod) Valid() bool {
	return m == PaymentOnAccount || m == PaymentCash
}

// Purchase is a purchase document. Receiving it creates or increments stock
// lots and posts the inventory entries as one unit.
type Purchase struct {
	entity.Document

	SupplierName  string        `db:"supplier_name" json:"supplierName"`
	WarehouseID   id.ID         `db:"warehouse_id" json:"warehouseId"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`

	// LedgerSetID correlates the posted transaction set, set at receipt
	LedgerSetID *id.ID `db:"ledger_set_id" json:"ledgerSetId,omitempty"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one purchase line. Batch and expiry date flow into the stock lot.
type Line struct {
	LineID     id.ID      `db:"line_id" json:"lineId"`
	PurchaseID id.ID      `db:"purchase_id" json:"-"`
	LineNo     int        `db:"line_no" json:"lineNo"`
	ProductID  id.ID      `db:"product_id" json:"productId"`
	Batch      string     `db:"batch" json:"batch,omitempty"`
	ExpiryDate *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`

	Quantity types.Quantity   `db:"quantity" json:"quantity"`
	UnitCost types.MinorUnits `db:"unit_cost" json:"unitCost"`
}

// Total is quantity times unit cost.
func (l *Line) Total() types.MinorUnits {
	return l.Quantity.MulMinorUnits(l.UnitCost)
}

// NewPurchase creates a draft purchase document.
func NewPurchase(supplierName string, warehouseID id.ID, method PaymentMethod) *Purchase {
	return &Purchase{
		Document:      entity.NewDocument(),
		SupplierName:  supplierName,
		WarehouseID:   warehouseID,
		PaymentMethod: method,
	}
}

// Total sums all line totals.
func (p *Purchase) Total() types.MinorUnits {
	var total types.MinorUnits
	for i := range p.Lines {
		total += p.Lines[i].Total()
	}
	return total
}

// Validate implements Validatable interface.
func (p *Purchase) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(p.WarehouseID) {
		return apperror.NewValidation("purchase warehouse is required")
	}
	if !p.PaymentMethod.Valid() {
		return apperror.NewValidation("unknown payment method").
			WithDetail("payment_method", string(p.PaymentMethod))
	}
	if len(p.Lines) == 0 {
		return apperror.NewValidation("purchase requires at least one line")
	}
	for i := range p.Lines {
		l := &p.Lines[i]
		if id.IsNil(l.ProductID) {
			return apperror.NewValidation("purchase line product is required").
				WithDetail("line_no", l.LineNo)
		}
		if !l.Quantity.IsPositive() {
			return apperror.NewValidation("purchase line quantity must be positive").
				WithDetail("line_no", l.LineNo)
		}
		if l.UnitCost.IsNegative() {
			return apperror.NewValidation("purchase line unit cost must not be negative").
				WithDetail("line_no", l.LineNo)
		}
	}
	return nil
}

// ListFilter bounds purchase queries.
type ListFilter struct {
	Posted   *bool
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}
