package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDiscount_Validate(t *testing.T) {
	assert.NoError(t, Discount{}.Validate())
	assert.NoError(t, PercentageDiscount(decimal.NewFromInt(0)).Validate())
	assert.NoError(t, PercentageDiscount(decimal.NewFromInt(100)).Validate())
	assert.NoError(t, FixedDiscount(decimal.NewFromFloat(9.99)).Validate())

	assert.Error(t, PercentageDiscount(decimal.NewFromInt(101)).Validate())
	assert.Error(t, PercentageDiscount(decimal.NewFromInt(-1)).Validate())
	assert.Error(t, FixedDiscount(decimal.NewFromInt(-5)).Validate())
	assert.Error(t, Discount{Kind: "bogus"}.Validate())
}

func TestDiscount_Amount(t *testing.T) {
	subtotal := MinorUnits(10000) // 100.00

	tests := []struct {
		name string
		d    Discount
		want MinorUnits
	}{
		{name: "none", d: Discount{}, want: 0},
		{name: "10 percent", d: PercentageDiscount(decimal.NewFromInt(10)), want: 1000},
		{name: "fractional percent rounds", d: PercentageDiscount(decimal.NewFromFloat(0.005)), want: 1}, // 0.5 cents rounds up
		{name: "fixed", d: FixedDiscount(decimal.NewFromFloat(25.50)), want: 2550},
		{name: "fixed capped at subtotal", d: FixedDiscount(decimal.NewFromInt(500)), want: 10000},
		{name: "full percent", d: PercentageDiscount(decimal.NewFromInt(100)), want: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.Amount(subtotal))
		})
	}
}

func TestDiscount_Amount_NonPositiveSubtotal(t *testing.T) {
	d := PercentageDiscount(decimal.NewFromInt(50))
	assert.Equal(t, MinorUnits(0), d.Amount(0))
	assert.Equal(t, MinorUnits(0), d.Amount(-100))
}

func TestDiscount_Apply(t *testing.T) {
	d := PercentageDiscount(decimal.NewFromInt(25))
	assert.Equal(t, MinorUnits(7500), d.Apply(10000))

	// A capped fixed discount drives the total to zero, never below.
	huge := FixedDiscount(decimal.NewFromInt(1_000_000))
	assert.Equal(t, MinorUnits(0), huge.Apply(500))
}
