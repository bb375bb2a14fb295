// Package product holds the product catalog: the items that stock lots and
// document lines reference.
package product

import (
	"context"
	"strings"
	"time"

	"bizledger/internal/core/apperror"
	"bizledger/internal/core/entity"
	"bizledger/internal/core/types"
)

// Product is a sellable or purchasable item. SKU is unique across the
// catalog.
type Product struct {
	entity.BaseEntity

	SKU  string `db:"sku" json:"sku"`
	Name string `db:"name" json:"name"`

	// Unit is the unit of measure label (pcs, kg, l)
	Unit string `db:"unit" json:"unit,omitempty"`

	// MinStock, when positive, arms the low stock report for this product
	MinStock types.Quantity `db:"min_stock" json:"minStock"`

	Active bool `db:"active" json:"active"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewProduct creates an active product with a fresh ID.
func NewProduct(sku, name string) *Product {
	now := time.Now().UTC()
	return &Product{
		BaseEntity: entity.NewBaseEntity(),
		SKU:        sku,
		Name:       name,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate implements Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.SKU) == "" {
		return apperror.NewValidation("product sku is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("product name is required")
	}
	if p.MinStock.IsNegative() {
		return apperror.NewValidation("minimum stock must not be negative").
			WithDetail("min_stock", p.MinStock.String())
	}
	return nil
}
