// Package quotation holds the quotation workflow: the one document whose
// terminal transition drives the posting engine. A quotation moves
// draft -> sent -> {approved, rejected}; expiry is derived from valid_until
// at read time, never stored; conversion to a sale happens exactly once.
package quotation

import (
	"context"
	"time"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/entity"
	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
)

// Status is the stored quotation state. StatusExpired never appears in
// storage; it is derived by EffectiveStatus.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// Quotation is a priced offer to a customer.
type Quotation struct {
	entity.Document

	CustomerName string    `db:"customer_name" json:"customerName"`
	WarehouseID  id.ID     `db:"warehouse_id" json:"warehouseId"`
	Status       Status    `db:"status" json:"status"`
	ValidUntil   time.Time `db:"valid_until" json:"validUntil"`

	// ConvertedToSaleID is set exactly once, by conversion
	ConvertedToSaleID *id.ID `db:"converted_to_sale_id" json:"convertedToSaleId,omitempty"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one quoted line, priced like a sale line.
type Line struct {
	LineID      id.ID   `db:"line_id" json:"lineId"`
	QuotationID id.ID   `db:"quotation_id" json:"-"`
	LineNo      int     `db:"line_no" json:"lineNo"`
	ProductID   id.ID   `db:"product_id" json:"productId"`
	Batch       *string `db:"batch" json:"batch,omitempty"`

	Quantity  types.Quantity   `db:"quantity" json:"quantity"`
	UnitPrice types.MinorUnits `db:"unit_price" json:"unitPrice"`
	Discount  types.Discount   `db:"-" json:"discount"`
}

// Subtotal is quantity times unit price before discount.
func (l *Line) Subtotal() types.MinorUnits {
	return l.Quantity.MulMinorUnits(l.UnitPrice)
}

// Total is the line amount after discount.
func (l *Line) Total() types.MinorUnits {
	return l.Discount.Apply(l.Subtotal())
}

// NewQuotation creates a draft quotation.
func NewQuotation(customerName string, warehouseID id.ID, validUntil time.Time) *Quotation {
	return &Quotation{
		Document:     entity.NewDocument(),
		CustomerName: customerName,
		WarehouseID:  warehouseID,
		Status:       StatusDraft,
		ValidUntil:   validUntil,
	}
}

// Total sums all line totals.
func (q *Quotation) Total() types.MinorUnits {
	var total types.MinorUnits
	for i := range q.Lines {
		total += q.Lines[i].Total()
	}
	return total
}

// EffectiveStatus derives the read-time status: a quotation past its
// valid_until reads as expired unless it was rejected. Rejection is final
// and not subject to expiry.
func (q *Quotation) EffectiveStatus(now time.Time) Status {
	if q.Status == StatusRejected {
		return q.Status
	}
	if now.After(q.ValidUntil) {
		return StatusExpired
	}
	return q.Status
}

// Converted reports whether the quotation has already produced a sale.
func (q *Quotation) Converted() bool {
	return q.ConvertedToSaleID != nil
}

// Validate implements Validatable interface.
func (q *Quotation) Validate(ctx context.Context) error {
	if err := q.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(q.WarehouseID) {
		return apperror.NewValidation("quotation warehouse is required")
	}
	if q.ValidUntil.IsZero() {
		return apperror.NewValidation("quotation valid_until is required")
	}
	if len(q.Lines) == 0 {
		return apperror.NewValidation("quotation requires at least one line")
	}
	for i := range q.Lines {
		l := &q.Lines[i]
		if id.IsNil(l.ProductID) {
			return apperror.NewValidation("quotation line product is required").
				WithDetail("line_no", l.LineNo)
		}
		if !l.Quantity.IsPositive() {
			return apperror.NewValidation("quotation line quantity must be positive").
				WithDetail("line_no", l.LineNo)
		}
		if l.UnitPrice.IsNegative() {
			return apperror.NewValidation("quotation line unit price must not be negative").
				WithDetail("line_no", l.LineNo)
		}
		if err := l.Discount.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ListFilter bounds quotation queries.
type ListFilter struct {
	Status   *Status
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}
