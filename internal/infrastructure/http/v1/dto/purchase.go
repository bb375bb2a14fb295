package dto

import (
	"time"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
	"bizledger/internal/domain/documents/purchase"
)

// CreatePurchaseRequest creates a draft purchase document.
type CreatePurchaseRequest struct {
	SupplierName  string                `json:"supplierName" binding:"required"`
	WarehouseID   string                `json:"warehouseId" binding:"required"`
	PaymentMethod string                `json:"paymentMethod,omitempty"`
	Date          *time.Time            `json:"date,omitempty"`
	Comment       string                `json:"comment,omitempty"`
	Lines         []PurchaseLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// PurchaseLineRequest is one received line. Batch and expiry date flow into
// the stock lot at receipt.
type PurchaseLineRequest struct {
	ProductID  string           `json:"productId" binding:"required"`
	Batch      string           `json:"batch,omitempty"`
	ExpiryDate *time.Time       `json:"expiryDate,omitempty"`
	Quantity   types.Quantity   `json:"quantity" binding:"required"`
	UnitCost   types.MinorUnits `json:"unitCost" binding:"required"`
}

// ToInput converts the request to a service input.
func (r *CreatePurchaseRequest) ToInput() (purchase.CreateInput, error) {
	warehouseID, err := id.Parse(r.WarehouseID)
	if err != nil {
		return purchase.CreateInput{}, apperror.NewValidation("invalid warehouse id")
	}

	method := purchase.PaymentMethod(r.PaymentMethod)
	if method == "" {
		method = purchase.PaymentOnAccount
	}

	in := purchase.CreateInput{
		SupplierName:  r.SupplierName,
		WarehouseID:   warehouseID,
		PaymentMethod: method,
		Date:          r.Date,
		Comment:       r.Comment,
	}
	for i, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return purchase.CreateInput{}, apperror.NewValidation("invalid product id").
				WithDetail("lineNo", i+1)
		}
		in.Lines = append(in.Lines, purchase.LineInput{
			ProductID:  productID,
			Batch:      line.Batch,
			ExpiryDate: line.ExpiryDate,
			Quantity:   line.Quantity,
			UnitCost:   line.UnitCost,
		})
	}
	return in, nil
}
