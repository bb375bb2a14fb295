package dto

import (
	"time"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
	"bizledger/internal/domain/inventory"
)

// ReceiveStockRequest books goods into a lot.
type ReceiveStockRequest struct {
	ProductID   string           `json:"productId" binding:"required"`
	WarehouseID string           `json:"warehouseId" binding:"required"`
	Batch       string           `json:"batch,omitempty"`
	ExpiryDate  *time.Time       `json:"expiryDate,omitempty"`
	Quantity    types.Quantity   `json:"quantity" binding:"required"`
	CostPrice   types.MinorUnits `json:"costPrice,omitempty"`
}

// ToInput converts the request to an engine input.
func (r *ReceiveStockRequest) ToInput() (inventory.ReceiveInput, error) {
	productID, warehouseID, err := parseProductWarehouse(r.ProductID, r.WarehouseID)
	if err != nil {
		return inventory.ReceiveInput{}, err
	}
	return inventory.ReceiveInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Batch:       r.Batch,
		ExpiryDate:  r.ExpiryDate,
		Quantity:    r.Quantity,
		CostPrice:   r.CostPrice,
		Reference:   manualReference(),
	}, nil
}

// IssueStockRequest takes goods out of a lot. A nil batch lets the engine
// pick the lot, earliest expiry first.
type IssueStockRequest struct {
	ProductID   string         `json:"productId" binding:"required"`
	WarehouseID string         `json:"warehouseId" binding:"required"`
	Batch       *string        `json:"batch,omitempty"`
	Quantity    types.Quantity `json:"quantity" binding:"required"`
}

// ToInput converts the request to an engine input.
func (r *IssueStockRequest) ToInput() (inventory.IssueInput, error) {
	productID, warehouseID, err := parseProductWarehouse(r.ProductID, r.WarehouseID)
	if err != nil {
		return inventory.IssueInput{}, err
	}
	return inventory.IssueInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Batch:       r.Batch,
		Quantity:    r.Quantity,
		Reference:   manualReference(),
	}, nil
}

// AdjustStockRequest sets a lot's quantity to a counted value.
type AdjustStockRequest struct {
	ProductID   string         `json:"productId" binding:"required"`
	WarehouseID string         `json:"warehouseId" binding:"required"`
	Batch       string         `json:"batch,omitempty"`
	NewQuantity types.Quantity `json:"newQuantity"`
	Reason      string         `json:"reason" binding:"required"`
}

// ToInput converts the request to an engine input.
func (r *AdjustStockRequest) ToInput() (inventory.AdjustInput, error) {
	productID, warehouseID, err := parseProductWarehouse(r.ProductID, r.WarehouseID)
	if err != nil {
		return inventory.AdjustInput{}, err
	}
	return inventory.AdjustInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Batch:       r.Batch,
		NewQuantity: r.NewQuantity,
		Reason:      r.Reason,
		Reference:   manualReference(),
	}, nil
}

// TransferStockRequest moves goods between warehouses.
type TransferStockRequest struct {
	ProductID       string         `json:"productId" binding:"required"`
	FromWarehouseID string         `json:"fromWarehouseId" binding:"required"`
	ToWarehouseID   string         `json:"toWarehouseId" binding:"required"`
	Batch           *string        `json:"batch,omitempty"`
	Quantity        types.Quantity `json:"quantity" binding:"required"`
}

// ToInput converts the request to an engine input.
func (r *TransferStockRequest) ToInput() (inventory.TransferInput, error) {
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return inventory.TransferInput{}, apperror.NewValidation("invalid product id")
	}
	fromID, err := id.Parse(r.FromWarehouseID)
	if err != nil {
		return inventory.TransferInput{}, apperror.NewValidation("invalid from warehouse id")
	}
	toID, err := id.Parse(r.ToWarehouseID)
	if err != nil {
		return inventory.TransferInput{}, apperror.NewValidation("invalid to warehouse id")
	}
	return inventory.TransferInput{
		ProductID:       productID,
		FromWarehouseID: fromID,
		ToWarehouseID:   toID,
		Batch:           r.Batch,
		Quantity:        r.Quantity,
		Reference:       manualReference(),
	}, nil
}

// OnHandResponse is the summed quantity for a product within a scope.
type OnHandResponse struct {
	ProductID   string         `json:"productId"`
	WarehouseID *string        `json:"warehouseId,omitempty"`
	Batch       *string        `json:"batch,omitempty"`
	Quantity    types.Quantity `json:"quantity"`
}

func parseProductWarehouse(product, warehouse string) (id.ID, id.ID, error) {
	productID, err := id.Parse(product)
	if err != nil {
		return id.Nil(), id.Nil(), apperror.NewValidation("invalid product id")
	}
	warehouseID, err := id.Parse(warehouse)
	if err != nil {
		return id.Nil(), id.Nil(), apperror.NewValidation("invalid warehouse id")
	}
	return productID, warehouseID, nil
}

// manualReference marks API-driven stock operations that are not backed by
// a document.
func manualReference() inventory.Reference {
	return inventory.Reference{Type: "manual"}
}
