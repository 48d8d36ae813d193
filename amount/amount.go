// Package amount provides fixed-point token arithmetic on 256-bit unsigned
// integers. Token quantities are scaled by a fixed number of decimal places
// (18 by default) and no floating point is used anywhere in the economy.
package amount

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Decimals is the default number of decimal places for token amounts.
const Decimals = 18

// Zero returns a fresh zero amount.
func Zero() *uint256.Int {
	return uint256.NewInt(0)
}

// FromUint64 returns amount as an unscaled 256-bit integer.
func FromUint64(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

// Pow10 returns 10^n as a 256-bit integer.
func Pow10(n int) *uint256.Int {
	result := uint256.NewInt(1)
	ten := uint256.NewInt(10)
	for i := 0; i < n; i++ {
		result.Mul(result, ten)
	}
	return result
}

// ParseUnits converts a decimal string such as "1" or "2.5" into a scaled
// integer amount with the given number of decimal places. It rejects
// negative values, malformed input, and fractional parts with more digits
// than the scale allows.
func ParseUnits(s string, decimals int) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("amount: empty value")
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("amount: negative value %q", s)
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > decimals {
		return nil, fmt.Errorf("amount: %q has more than %d decimal places", s, decimals)
	}

	digits := whole + frac + strings.Repeat("0", decimals-len(frac))
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return uint256.NewInt(0), nil
	}

	result, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, fmt.Errorf("amount: invalid value %q: %w", s, err)
	}
	return result, nil
}

// MustParseUnits is ParseUnits that panics on malformed input.
// Intended for constants and tests.
func MustParseUnits(s string, decimals int) *uint256.Int {
	v, err := ParseUnits(s, decimals)
	if err != nil {
		panic(err)
	}
	return v
}

// FormatUnits renders a scaled amount back to a decimal string,
// trimming trailing zeros from the fractional part.
func FormatUnits(v *uint256.Int, decimals int) string {
	if v == nil {
		return "0"
	}
	digits := v.Dec()
	if decimals == 0 {
		return digits
	}
	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}
	whole := digits[:len(digits)-decimals]
	frac := strings.TrimRight(digits[len(digits)-decimals:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}
