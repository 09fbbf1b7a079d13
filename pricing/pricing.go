// Package pricing provides the margin and line-total arithmetic for BOQ versions.
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineTotal returns unitPrice × qty.
func LineTotal(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// MarginAmount returns the markup applied on top of subtotal for the given
// percentage.
func MarginAmount(subtotal, marginPercent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(marginPercent).Div(hundred)
}

// GrandTotal applies a percentage markup to subtotal:
// subtotal + subtotal × marginPercent / 100.
func GrandTotal(subtotal, marginPercent decimal.Decimal) decimal.Decimal {
	return subtotal.Add(MarginAmount(subtotal, marginPercent))
}

// Round rounds an amount to 2 decimal places. Only used at the presentation
// boundary; stored amounts keep full precision.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// Totals is the per-kind cost breakdown of a working set or version.
type Totals struct {
	ProductCost   decimal.Decimal `json:"productCost"`
	DriverCost    decimal.Decimal `json:"driverCost"`
	AccessoryCost decimal.Decimal `json:"accessoryCost"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
}

// NewTotals builds Totals whose GrandTotal is the unmargined sum of the
// three costs.
func NewTotals(product, driver, accessory decimal.Decimal) Totals {
	return Totals{
		ProductCost:   product,
		DriverCost:    driver,
		AccessoryCost: accessory,
		GrandTotal:    Sum(product, driver, accessory),
	}
}
