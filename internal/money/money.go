// Package money provides pricing arithmetic on integer minor currency units
// (cents). Keeping amounts in cents avoids floating-point rounding error in
// cart subtotals and tax.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TaxRateBasisPoints is the sales tax rate applied to cart subtotals,
// expressed in basis points (1000 = 10%).
const TaxRateBasisPoints = 1000

// basisPointScale converts basis points back to a plain ratio.
const basisPointScale = 10000

// Parse errors.
var (
	ErrInvalidAmount  = errors.New("invalid currency amount")
	ErrNegativeAmount = errors.New("currency amount cannot be negative")
)

// Tax computes the tax on a subtotal in cents, rounding half up to the
// nearest cent. Tax(6997) = 700, Tax(665) = 67.
func Tax(subtotal int64) int64 {
	return (subtotal*TaxRateBasisPoints + basisPointScale/2) / basisPointScale
}

// Total computes the grand total from a subtotal and its tax.
func Total(subtotal, tax int64) int64 {
	return subtotal + tax
}

// Format renders cents as a currency string, e.g. 6997 -> "$69.97". Two
// decimal places are always emitted and no thousands separators are added.
func Format(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// Parse converts a currency string back to cents. The accepted shape is the
// one Format emits: a leading "$", an integer part, and exactly two decimal
// digits. Thousands commas in the integer part are tolerated, so
// Parse(Format(c)) == c for all non-negative c.
func Parse(s string) (int64, error) {
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("%w: %q", ErrNegativeAmount, s)
	}

	rest, ok := strings.CutPrefix(s, "$")
	if !ok {
		return 0, fmt.Errorf("%w: %q is missing the currency symbol", ErrInvalidAmount, s)
	}

	dollarPart, centPart, ok := strings.Cut(rest, ".")
	if !ok {
		return 0, fmt.Errorf("%w: %q is missing the decimal part", ErrInvalidAmount, s)
	}

	if len(centPart) != 2 {
		return 0, fmt.Errorf("%w: %q must have exactly two decimal digits", ErrInvalidAmount, s)
	}

	dollarPart = strings.ReplaceAll(dollarPart, ",", "")
	if dollarPart == "" {
		return 0, fmt.Errorf("%w: %q is missing the integer part", ErrInvalidAmount, s)
	}

	if !digitsOnly(dollarPart) || !digitsOnly(centPart) {
		return 0, fmt.Errorf("%w: %q contains non-digit characters", ErrInvalidAmount, s)
	}

	dollars, err := strconv.ParseInt(dollarPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}

	cents, err := strconv.ParseInt(centPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}

	if dollars > (math.MaxInt64-99)/100 {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidAmount, s)
	}

	return dollars*100 + cents, nil
}

// digitsOnly reports whether s is a non-empty run of ASCII digits.
func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
