// Package money converts between decimal major-unit amounts as they appear
// on the wire and the integer minor units stored in the database.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const minorUnitExponent = 2

var hundred = decimal.NewFromInt(100)

// ParseCents parses a positive decimal string such as "100.00" into cents.
// More than two fractional digits is rejected rather than rounded.
func ParseCents(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("amount is required")
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", value)
	}
	return FromDecimal(amount)
}

// FromDecimal converts a major-unit decimal into cents.
func FromDecimal(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, fmt.Errorf("amount must be greater than zero")
	}
	if amount.Exponent() < -minorUnitExponent && !amount.Equal(amount.Truncate(minorUnitExponent)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", amount.String(), minorUnitExponent)
	}
	cents := amount.Mul(hundred)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("amount %s is not representable in cents", amount.String())
	}
	return cents.IntPart(), nil
}

// FormatCents renders cents as a fixed two-decimal string.
func FormatCents(cents int64) string {
	return decimal.New(cents, -minorUnitExponent).StringFixed(minorUnitExponent)
}
