// Package format renders money and percentages for display.
package format

import (
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the symbol used when none is configured.
const DefaultCurrency = "₹"

// Money formats d with two decimals after the currency symbol. A negative
// amount is written as -₹12.50.
func Money(symbol string, d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + symbol + d.Abs().StringFixed(2)
	}
	return symbol + d.StringFixed(2)
}

// Signed formats d with an explicit + for positive amounts.
func Signed(symbol string, d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + Money(symbol, d)
	}
	return Money(symbol, d)
}

// Percent rounds p to an integer and appends %.
func Percent(p decimal.Decimal) string {
	return p.Round(0).String() + "%"
}
