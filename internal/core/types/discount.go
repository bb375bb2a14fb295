package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DiscountKind selects how a discount value is interpreted.
type DiscountKind string

const (
	DiscountNone       DiscountKind = ""
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// Discount is a tagged variant: either a percentage of the subtotal or a
// fixed amount. It is resolved to an absolute amount at computation time and
// capped at the subtotal so a line total can never go negative.
type Discount struct {
	Kind  DiscountKind    `db:"discount_kind" json:"kind,omitempty"`
	Value decimal.Decimal `db:"discount_value" json:"value"`
}

// PercentageDiscount creates a percentage discount (value in 0..100).
func PercentageDiscount(value decimal.Decimal) Discount {
	return Discount{Kind: DiscountPercentage, Value: value}
}

// FixedDiscount creates a fixed-amount discount.
func FixedDiscount(value decimal.Decimal) Discount {
	return Discount{Kind: DiscountFixed, Value: value}
}

// Validate checks the discount invariants.
func (d Discount) Validate() error {
	switch d.Kind {
	case DiscountNone:
		return nil
	case DiscountPercentage:
		if d.Value.IsNegative() || d.Value.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("percentage discount must be between 0 and 100, got %s", d.Value)
		}
		return nil
	case DiscountFixed:
		if d.Value.IsNegative() {
			return fmt.Errorf("fixed discount must not be negative, got %s", d.Value)
		}
		return nil
	default:
		return fmt.Errorf("unknown discount kind %q", d.Kind)
	}
}

// Amount resolves the discount to minor units for the given subtotal.
// The result is rounded half-up to the smallest currency unit and never
// exceeds the subtotal.
func (d Discount) Amount(subtotal MinorUnits) MinorUnits {
	if subtotal <= 0 {
		return 0
	}

	var amount MinorUnits
	switch d.Kind {
	case DiscountPercentage:
		raw := subtotal.Decimal().Mul(d.Value).Div(decimal.NewFromInt(100))
		amount = MinorUnits(raw.Shift(CurrencyExponent).Round(0).IntPart())
	case DiscountFixed:
		scaled := d.Value.Shift(CurrencyExponent).Round(0)
		amount = MinorUnits(scaled.IntPart())
	default:
		return 0
	}

	if amount > subtotal {
		return subtotal
	}
	if amount < 0 {
		return 0
	}
	return amount
}

// Apply returns the subtotal less the resolved discount.
func (d Discount) Apply(subtotal MinorUnits) MinorUnits {
	return subtotal - d.Amount(subtotal)
}
