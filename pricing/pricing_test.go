package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice string
		qty       int
		expect    string
	}{
		{"basic multiplication", "100", 2, "200"},
		{"zero qty", "100", 0, "0"},
		{"zero price", "0", 5, "0"},
		{"decimal price", "99.99", 3, "299.97"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineTotal(d(tt.unitPrice), tt.qty)
			if !got.Equal(d(tt.expect)) {
				t.Errorf("LineTotal(%s, %d) = %s, want %s", tt.unitPrice, tt.qty, got, tt.expect)
			}
		})
	}
}

func TestSum(t *testing.T) {
	if got := Sum(); !got.IsZero() {
		t.Errorf("Sum() = %s, want 0", got)
	}
	if got := Sum(d("200"), d("40"), d("5")); !got.Equal(d("245")) {
		t.Errorf("Sum(200, 40, 5) = %s, want 245", got)
	}
}

func TestGrandTotal(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		margin   string
		expect   string
	}{
		{"zero margin is identity", "245", "0", "245"},
		{"hundred percent doubles", "245", "100", "490"},
		{"ten percent", "245", "10", "269.5"},
		{"fractional margin", "1000", "12.5", "1125"},
		{"zero subtotal", "0", "35", "0"},
		{"margin above hundred", "100", "250", "350"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GrandTotal(d(tt.subtotal), d(tt.margin))
			if !got.Equal(d(tt.expect)) {
				t.Errorf("GrandTotal(%s, %s) = %s, want %s", tt.subtotal, tt.margin, got, tt.expect)
			}
		})
	}
}

func TestGrandTotal_KeepsPrecision(t *testing.T) {
	got := GrandTotal(d("10"), d("33.3333"))
	if !got.Equal(d("13.33333")) {
		t.Errorf("GrandTotal = %s, want 13.33333", got)
	}
	if r := Round(got); !r.Equal(d("13.33")) {
		t.Errorf("Round = %s, want 13.33", r)
	}
}

func TestMarginAmount(t *testing.T) {
	if got := MarginAmount(d("245"), d("10")); !got.Equal(d("24.5")) {
		t.Errorf("MarginAmount(245, 10) = %s, want 24.5", got)
	}
}

func TestNewTotals(t *testing.T) {
	got := NewTotals(d("200"), d("40"), d("5"))
	if !got.GrandTotal.Equal(d("245")) {
		t.Errorf("GrandTotal = %s, want 245", got.GrandTotal)
	}
	if !got.ProductCost.Equal(d("200")) || !got.DriverCost.Equal(d("40")) || !got.AccessoryCost.Equal(d("5")) {
		t.Errorf("unexpected breakdown: %+v", got)
	}
}
