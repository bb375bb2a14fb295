package dto

import (
	"bizledger/internal/core/types"
	"bizledger/internal/domain/catalogs/product"
)

// CreateProductRequest registers one product.
type CreateProductRequest struct {
	SKU      string         `json:"sku" binding:"required"`
	Name     string         `json:"name" binding:"required"`
	Unit     string         `json:"unit,omitempty"`
	MinStock types.Quantity `json:"minStock,omitempty"`
}

// ToInput converts the request to a service input.
func (r *CreateProductRequest) ToInput() product.CreateInput {
	return product.CreateInput{
		SKU:      r.SKU,
		Name:     r.Name,
		Unit:     r.Unit,
		MinStock: r.MinStock,
	}
}

// UpdateProductRequest applies partial changes to a product.
type UpdateProductRequest struct {
	Name     *string         `json:"name,omitempty"`
	Unit     *string         `json:"unit,omitempty"`
	MinStock *types.Quantity `json:"minStock,omitempty"`
	Active   *bool           `json:"active,omitempty"`
}

// ToInput converts the request to a service input.
func (r *UpdateProductRequest) ToInput() product.UpdateInput {
	return product.UpdateInput{
		Name:     r.Name,
		Unit:     r.Unit,
		MinStock: r.MinStock,
		Active:   r.Active,
	}
}
