// Package sale holds the sales document: lines priced in minor units with
// optional discounts, finalized through the document posting engine.
package sale

import (
	"context"
	"time"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/entity"
	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
)

// PaymentMethod selects the debit side of the revenue posting.
type PaymentMethod string

const (
	// PaymentOnAccount debits accounts receivable
	PaymentOnAccount PaymentMethod = "on_account"
	// PaymentCash debits the cash account directly
	PaymentCash PaymentMethod = "cash"
)

// Valid reports whether the payment method is known.
func (m PaymentMethod) Valid() bool {
	return m == PaymentOnAccount || m == PaymentCash
}

// Sale is a sales document. Until finalized it is a draft; finalization
// issues stock and posts the revenue and cost entries as one unit, after
// which the document is immutable.
type Sale struct {
	entity.Document

	CustomerName  string        `db:"customer_name" json:"customerName"`
	WarehouseID   id.ID         `db:"warehouse_id" json:"warehouseId"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`

	// LedgerSetID correlates the posted transaction set, set at finalization
	LedgerSetID *id.ID `db:"ledger_set_id" json:"ledgerSetId,omitempty"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one sale line. Batch, when set, pins the stock lot to issue from;
// otherwise the engine picks one deterministically.
type Line struct {
	LineID   id.ID   `db:"line_id" json:"lineId"`
	SaleID   id.ID   `db:"sale_id" json:"-"`
	LineNo   int     `db:"line_no" json:"lineNo"`
	ProductID id.ID  `db:"product_id" json:"productId"`
	Batch    *string `db:"batch" json:"batch,omitempty"`

	Quantity  types.Quantity   `db:"quantity" json:"quantity"`
	UnitPrice types.MinorUnits `db:"unit_price" json:"unitPrice"`
	Discount  types.Discount   `db:"-" json:"discount"`
}

// Subtotal is quantity times unit price before discount.
func (l *Line) Subtotal() types.MinorUnits {
	return l.Quantity.MulMinorUnits(l.UnitPrice)
}

// Total is the line amount after discount, never below zero.
func (l *Line) Total() types.MinorUnits {
	return l.Discount.Apply(l.Subtotal())
}

// NewSale creates a draft sale document.
func NewSale(customerName string, warehouseID id.ID, method PaymentMethod) *Sale {
	return &Sale{
		Document:      entity.NewDocument(),
		CustomerName:  customerName,
		WarehouseID:   warehouseID,
		PaymentMethod: method,
	}
}

// Total sums all line totals.
func (s *Sale) Total() types.MinorUnits {
	var total types.MinorUnits
	for i := range s.Lines {
		total += s.Lines[i].Total()
	}
	return total
}

// Validate implements Validatable interface.
func (s *Sale) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(s.WarehouseID) {
		return apperror.NewValidation("sale warehouse is required")
	}
	if !s.PaymentMethod.Valid() {
		return apperror.NewValidation("unknown payment method").
			WithDetail("payment_method", string(s.PaymentMethod))
	}
	if len(s.Lines) == 0 {
		return apperror.NewValidation("sale requires at least one line")
	}
	for i := range s.Lines {
		l := &s.Lines[i]
		if id.IsNil(l.ProductID) {
			return apperror.NewValidation("sale line product is required").
				WithDetail("line_no", l.LineNo)
		}
		if !l.Quantity.IsPositive() {
			return apperror.NewValidation("sale line quantity must be positive").
				WithDetail("line_no", l.LineNo)
		}
		if l.UnitPrice.IsNegative() {
			return apperror.NewValidation("sale line unit price must not be negative").
				WithDetail("line_no", l.LineNo)
		}
		if err := l.Discount.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ListFilter bounds sale queries.
type ListFilter struct {
	Posted   *bool
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}
