package dto

import (
	"time"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
	"bizledger/internal/domain/documents/sale"
)

// CreateSaleRequest creates a draft sale document.
type CreateSaleRequest struct {
	CustomerName  string            `json:"customerName" binding:"required"`
	WarehouseID   string            `json:"warehouseId" binding:"required"`
	PaymentMethod string            `json:"paymentMethod,omitempty"`
	Date          *time.Time        `json:"date,omitempty"`
	Comment       string            `json:"comment,omitempty"`
	Lines         []SaleLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// SaleLineRequest is one priced line.
type SaleLineRequest struct {
	ProductID string          `json:"productId" binding:"required"`
	Batch     *string         `json:"batch,omitempty"`
	Quantity  types.Quantity  `json:"quantity" binding:"required"`
	UnitPrice types.MinorUnits `json:"unitPrice" binding:"required"`
	Discount  *types.Discount `json:"discount,omitempty"`
}

// ToInput converts the request to a service input.
func (r *CreateSaleRequest) ToInput() (sale.CreateInput, error) {
	warehouseID, err := id.Parse(r.WarehouseID)
	if err != nil {
		return sale.CreateInput{}, apperror.NewValidation("invalid warehouse id")
	}

	method := sale.PaymentMethod(r.PaymentMethod)
	if method == "" {
		method = sale.PaymentOnAccount
	}

	in := sale.CreateInput{
		CustomerName:  r.CustomerName,
		WarehouseID:   warehouseID,
		PaymentMethod: method,
		Date:          r.Date,
		Comment:       r.Comment,
	}
	for i, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return sale.CreateInput{}, apperror.NewValidation("invalid product id").
				WithDetail("lineNo", i+1)
		}
		li := sale.LineInput{
			ProductID: productID,
			Batch:     line.Batch,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
		if line.Discount != nil {
			li.Discount = *line.Discount
		}
		in.Lines = append(in.Lines, li)
	}
	return in, nil
}
