// Package warehouse holds the warehouse catalog.
package warehouse

import (
	"context"
	"strings"
	"time"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/entity"
)

// Warehouse is a stock location. Code is unique.
type Warehouse struct {
	entity.BaseEntity

	Code    string `db:"code" json:"code"`
	Name    string `db:"name" json:"name"`
	Address string `db:"address" json:"address,omitempty"`
	Active  bool   `db:"active" json:"active"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewWarehouse creates an active warehouse with a fresh ID.
func NewWarehouse(code, name string) *Warehouse {
	now := time.Now().UTC()
	return &Warehouse{
		BaseEntity: entity.NewBaseEntity(),
		Code:       code,
		Name:       name,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate implements Validatable interface.
func (w *Warehouse) Validate(ctx context.Context) error {
	if strings.TrimSpace(w.Code) == "" {
		return apperror.NewValidation("warehouse code is required")
	}
	if strings.TrimSpace(w.Name) == "" {
		return apperror.NewValidation("warehouse name is required")
	}
	return nil
}
