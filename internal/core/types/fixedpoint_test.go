package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewMinorUnitsFromDecimal(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    MinorUnits
		wantErr bool
	}{
		{name: "whole", in: "100", want: 10000},
		{name: "cents", in: "123.45", want: 12345},
		{name: "negative", in: "-0.01", want: -1},
		{name: "zero", in: "0", want: 0},
		{name: "too precise", in: "1.005", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.in)
			if err != nil {
				t.Fatalf("parse decimal: %v", err)
			}
			got, err := NewMinorUnitsFromDecimal(d)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s, got %d", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("want %d, got %d", tt.want, got)
			}
		})
	}
}

func TestMinorUnits_String(t *testing.T) {
	if got := MinorUnits(12345).String(); got != "123.45" {
		t.Errorf("want 123.45, got %s", got)
	}
	if got := MinorUnits(-5).String(); got != "-0.05" {
		t.Errorf("want -0.05, got %s", got)
	}
	if got := MinorUnits(0).String(); got != "0.00" {
		t.Errorf("want 0.00, got %s", got)
	}
}

func TestQuantity_Parse(t *testing.T) {
	tests := []struct {
		in      string
		want    Quantity
		wantErr bool
	}{
		{in: "1", want: 10000},
		{in: "2.5", want: 25000},
		{in: "0.0001", want: 1},
		{in: "-3.25", want: -32500},
		{in: "+7", want: 70000},
		{in: ".5", want: 5000},
		{in: "1.00005", want: 10000}, // extra digits truncated
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		got, err := NewQuantityFromString(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error, got %d", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: want %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestQuantity_JSONRoundTrip(t *testing.T) {
	q := NewQuantityFromFloat64(12.5)

	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "12.5000" {
		t.Errorf("want 12.5000, got %s", data)
	}

	var back Quantity
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != q {
		t.Errorf("round trip mismatch: %d != %d", back, q)
	}

	// String form is accepted too.
	if err := json.Unmarshal([]byte(`"3.75"`), &back); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if back != 37500 {
		t.Errorf("want 37500, got %d", back)
	}

	if err := json.Unmarshal([]byte("null"), &back); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if back != 0 {
		t.Errorf("null should zero the quantity, got %d", back)
	}
}

func TestQuantity_MulMinorUnits(t *testing.T) {
	tests := []struct {
		name  string
		qty   Quantity
		price MinorUnits
		want  MinorUnits
	}{
		{name: "whole units", qty: NewQuantityFromFloat64(3), price: 250, want: 750},
		{name: "fractional qty", qty: NewQuantityFromFloat64(2.5), price: 199, want: 498}, // 497.5 rounds up
		{name: "rounds half up", qty: NewQuantityFromFloat64(0.5), price: 1, want: 1},
		{name: "negative", qty: NewQuantityFromFloat64(-1.5), price: 100, want: -150},
		{name: "zero", qty: 0, price: 9999, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.qty.MulMinorUnits(tt.price); got != tt.want {
				t.Errorf("want %d, got %d", tt.want, got)
			}
		})
	}
}

func TestQuantity_String(t *testing.T) {
	if got := NewQuantityFromFloat64(1.5).String(); got != "1.5000" {
		t.Errorf("want 1.5000, got %s", got)
	}
	if got := NewQuantityFromFloat64(-0.25).String(); got != "-0.2500" {
		t.Errorf("want -0.2500, got %s", got)
	}
}
