package dto

import (
	"time"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/id"
	"bizledger/internal/core/types"
	"bizledger/internal/domain/documents/quotation"
	"bizledger/internal/domain/documents/sale"
)

// CreateQuotationRequest creates a draft quotation.
type CreateQuotationRequest struct {
	CustomerName string                 `json:"customerName" binding:"required"`
	WarehouseID  string                 `json:"warehouseId" binding:"required"`
	ValidUntil   time.Time              `json:"validUntil" binding:"required"`
	Comment      string                 `json:"comment,omitempty"`
	Lines        []QuotationLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// QuotationLineRequest is one quoted line, priced like a sale line.
type QuotationLineRequest struct {
	ProductID string           `json:"productId" binding:"required"`
	Batch     *string          `json:"batch,omitempty"`
	Quantity  types.Quantity   `json:"quantity" binding:"required"`
	UnitPrice types.MinorUnits `json:"unitPrice" binding:"required"`
	Discount  *types.Discount  `json:"discount,omitempty"`
}

// ToInput converts the request to a service input.
func (r *CreateQuotationRequest) ToInput() (quotation.CreateInput, error) {
	warehouseID, err := id.Parse(r.WarehouseID)
	if err != nil {
		return quotation.CreateInput{}, apperror.NewValidation("invalid warehouse id")
	}

	in := quotation.CreateInput{
		CustomerName: r.CustomerName,
		WarehouseID:  warehouseID,
		ValidUntil:   r.ValidUntil,
		Comment:      r.Comment,
	}
	for i, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return quotation.CreateInput{}, apperror.NewValidation("invalid product id").
				WithDetail("lineNo", i+1)
		}
		li := quotation.LineInput{
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

// ConvertQuotationRequest converts an approved quotation into a sale.
type ConvertQuotationRequest struct {
	PaymentMethod string `json:"paymentMethod,omitempty"`
}

// ToInput converts the request to a service input.
func (r *ConvertQuotationRequest) ToInput() quotation.ConvertInput {
	return quotation.ConvertInput{
		PaymentMethod: sale.PaymentMethod(r.PaymentMethod),
	}
}
