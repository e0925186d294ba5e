package utils

import (
	"github.com/shopspring/decimal"
)

// CurrencyPrecision is the number of decimal places amounts are rounded to
// before being handed to callers. Persisted values keep full precision; the
// store commits before any rounding happens.
const CurrencyPrecision = 2

// RoundCurrency rounds an amount to currency precision.
// Example: 12.3456 returns 12.35.
func RoundCurrency(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(CurrencyPrecision)
}
