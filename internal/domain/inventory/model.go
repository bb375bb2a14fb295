// Package inventory provides the lot-level multi-warehouse stock engine:
// movement mutations (receive, issue, adjust, transfer) under a
// non-negativity invariant, plus the query side (on-hand, low stock,
// expiring lots).
package inventory

import (
	"time"

	"bizledger/internal/core/entity"
	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
)

// Lot is a quantity of a product at a warehouse, identified by the tuple
// (product, warehouse, batch). A lot is never deleted: qty = 0 is a valid
// terminal state kept for batch and expiry history.
type Lot struct {
	entity.BaseEntity

	ProductID   id.ID `db:"product_id" json:"productId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// Batch distinguishes lots of the same product at the same warehouse.
	// Empty string means "no batch".
	Batch string `db:"batch" json:"batch,omitempty"`

	ExpiryDate *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`

	// Quantity on hand, never negative
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// CostPrice is fixed at first receipt and never recomputed.
	// Re-receiving at a different cost requires a distinct batch.
	CostPrice types.MinorUnits `db:"cost_price" json:"costPrice"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewLot creates an empty lot for the given (product, warehouse, batch) key.
func NewLot(productID, warehouseID id.ID, batch string) *Lot {
	return &Lot{
		BaseEntity:  entity.NewBaseEntity(),
		ProductID:   productID,
		WarehouseID: warehouseID,
		Batch:       batch,
	}
}

// RecordType defines movement direction.
type RecordType string

const (
	// RecordTypeReceipt increases the lot quantity
	RecordTypeReceipt RecordType = "receipt"
	// RecordTypeExpense decreases the lot quantity
	RecordTypeExpense RecordType = "expense"
)

// MovementSource names the operation that produced a movement.
type MovementSource string

const (
	SourceReceive  MovementSource = "receive"
	SourceIssue    MovementSource = "issue"
	SourceAdjust   MovementSource = "adjust"
	SourceTransfer MovementSource = "transfer"
)

// Movement is one immutable audit row of the stock ledger. Movements are
// never updated; the lot row carries the materialized balance.
type Movement struct {
	// LineID is unique identifier for this movement (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	LotID       id.ID  `db:"lot_id" json:"lotId"`
	ProductID   id.ID  `db:"product_id" json:"productId"`
	WarehouseID id.ID  `db:"warehouse_id" json:"warehouseId"`
	Batch       string `db:"batch" json:"batch,omitempty"`

	// Period is the business date of the movement
	Period time.Time `db:"period" json:"period"`

	RecordType RecordType     `db:"record_type" json:"recordType"`
	Source     MovementSource `db:"source" json:"source"`

	// Quantity is always positive; direction comes from RecordType
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// Reason is filled for adjustments
	Reason string `db:"reason" json:"reason,omitempty"`

	// ReferenceType/ReferenceID point to the originating business document
	ReferenceType string `db:"reference_type" json:"referenceType,omitempty"`
	ReferenceID   id.ID  `db:"reference_id" json:"referenceId,omitempty"`

	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// SignedQuantity returns quantity with sign based on record type.
func (m *Movement) SignedQuantity() types.Quantity {
	if m.RecordType == RecordTypeExpense {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// Reference identifies the business document behind a movement.
type Reference struct {
	Type string
	ID   id.ID
}

// LowStockScope selects how on-hand quantities are summed against the
// product minimum: across all warehouses or per warehouse.
type LowStockScope struct {
	// WarehouseID, when set, restricts the check to one warehouse
	WarehouseID *id.ID
}

// LowStockRow flags a product whose summed quantity is at or below its
// configured minimum.
type LowStockRow struct {
	ProductID   id.ID          `db:"product_id" json:"productId"`
	SKU         string         `db:"sku" json:"sku"`
	Name        string         `db:"name" json:"name"`
	WarehouseID *id.ID         `db:"warehouse_id" json:"warehouseId,omitempty"`
	OnHand      types.Quantity `db:"on_hand" json:"onHand"`
	MinStock    types.Quantity `db:"min_stock" json:"minStock"`
}

// MovementFilter bounds movement history queries.
type MovementFilter struct {
	ProductID   *id.ID
	WarehouseID *id.ID
	Source      *MovementSource
	FromDate    *time.Time
	ToDate      *time.Time
	Limit       int
	Offset      int
}

// LotFilter bounds lot queries.
type LotFilter struct {
	ProductID   *id.ID
	WarehouseID *id.ID
	ExcludeZero bool
}
