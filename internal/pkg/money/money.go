// Package money holds the decimal helpers shared by every amount the service stores.
package money

import (
	"fmt"
	"strings"

	xerrors "nichifier-service/internal/pkg/errors"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept for currency amounts and percentages.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Quantize rounds to two places, halves away from zero.
func Quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Percent returns value * percent / 100 without rounding.
func Percent(value, percent decimal.Decimal) decimal.Decimal {
	return value.Mul(percent.Div(hundred))
}

// Parse turns a user supplied string into an amount. Blank and non-numeric input
// yields ErrInvalidAmount.
func Parse(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", xerrors.ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", xerrors.ErrInvalidAmount, raw)
	}
	return d, nil
}

// ParseNonNegative parses and quantizes, rejecting negative amounts.
func ParseNonNegative(raw string) (decimal.Decimal, error) {
	d, err := Parse(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q must not be negative", xerrors.ErrInvalidAmount, raw)
	}
	return Quantize(d), nil
}

// NormalizeCurrency trims and upper-cases a currency code, falling back when blank.
func NormalizeCurrency(code, fallback string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return fallback
	}
	return code
}
