package dto

import (
	"bizledger/internal/domain/catalogs/warehouse"
)

// CreateWarehouseRequest registers one warehouse.
type CreateWarehouseRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Address string `json:"address,omitempty"`
}

// ToInput converts the request to a service input.
func (r *CreateWarehouseRequest) ToInput() warehouse.CreateInput {
	return warehouse.CreateInput{
		Code:    r.Code,
		Name:    r.Name,
		Address: r.Address,
	}
}

// UpdateWarehouseRequest applies partial changes to a warehouse.
type UpdateWarehouseRequest struct {
	Name    *string `json:"name,omitempty"`
	Address *string `json:"address,omitempty"`
	Active  *bool   `json:"active,omitempty"`
}

// ToInput converts the request to a service input.
func (r *UpdateWarehouseRequest) ToInput() warehouse.UpdateInput {
	return warehouse.UpdateInput{
		Name:    r.Name,
		Address: r.Address,
		Active:  r.Active,
	}
}
