// Package money converts between stored minor units and the decimal major
// units shown to clients. Amounts are always stored as int64 minor units.
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	dErrors "poolpay/pkg/domain-errors"
)

var zeroDecimalCurrencies = map[string]bool{
	"JPY": true,
	"KRW": true,
	"UGX": true,
	"XAF": true,
	"XOF": true,
	"RWF": true,
}

// Exponent returns the number of minor-unit digits for currency.
func Exponent(currency string) int32 {
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		return 0
	}
	return 2
}

// ToMajor converts minor units into a major-unit decimal.
func ToMajor(minor int64, currency string) decimal.Decimal {
	return decimal.New(minor, -Exponent(currency))
}

// Format renders minor units as a fixed-point major-unit string, e.g. "1500.00".
func Format(minor int64, currency string) string {
	return ToMajor(minor, currency).StringFixed(Exponent(currency))
}

// ParseMajor parses a major-unit amount such as "1500.50" into minor units.
// It rejects negative values, excess precision and values that overflow int64.
func ParseMajor(s, currency string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeValidation, "amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeValidation, "amount must be a decimal number")
	}
	if d.IsNegative() {
		return 0, dErrors.New(dErrors.CodeValidation, "amount cannot be negative")
	}
	exp := Exponent(currency)
	minor := d.Shift(exp)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, dErrors.New(dErrors.CodeValidation, "amount has too many decimal places")
	}
	if minor.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, dErrors.New(dErrors.CodeValidation, "amount is too large")
	}
	return minor.IntPart(), nil
}
