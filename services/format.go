package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatINR formats an amount into Indian Rupee notation.
// It uses the Indian numbering system where, after the rightmost 3 digits,
// digits are grouped in pairs (e.g., ₹1,23,45,678.90).
// The result always includes exactly 2 decimal places.
func FormatINR(amount decimal.Decimal) string {
	return FormatMoney("₹", amount)
}

// FormatMoney formats amount with Indian digit grouping behind symbol.
// Rounding to 2 places happens here and nowhere earlier.
func FormatMoney(symbol string, amount decimal.Decimal) string {
	negative := amount.IsNegative()
	raw := amount.Abs().StringFixed(2)

	// Split into integer and decimal parts.
	parts := strings.SplitN(raw, ".", 2)
	intPart := parts[0]
	decPart := parts[1]

	result := symbol + applyIndianGrouping(intPart) + "." + decPart
	if negative && raw != "0.00" {
		result = "-" + result
	}
	return result
}

// FormatPercent renders a margin percentage without trailing zeros, e.g. "12.5%".
func FormatPercent(pct decimal.Decimal) string {
	return pct.String() + "%"
}

// applyIndianGrouping inserts commas into an integer string using the
// Indian numbering system: the rightmost 3 digits form the first group,
// then every 2 digits form subsequent groups.
func applyIndianGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	// The last 3 digits stay together.
	result := s[n-3:]
	remaining := s[:n-3]

	// Group remaining digits in pairs from the right.
	for len(remaining) > 2 {
		result = remaining[len(remaining)-2:] + "," + result
		remaining = remaining[:len(remaining)-2]
	}
	if len(remaining) > 0 {
		result = remaining + "," + result
	}

	return result
}
