// Package numparse parses free-text numeric form input. It tolerates what
// a user mid-keystroke produces: a trailing decimal point, a comma as the
// decimal separator, and an optional leading sign. Anything unparseable is
// an error, never zero, so the calculators treat "not a number" and
// non-positive values identically wherever positivity is required.
package numparse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmpty is returned for an empty or whitespace-only field.
	ErrEmpty = errors.New("numparse: empty value")

	// ErrUnparseable is returned when the text is not a number.
	ErrUnparseable = errors.New("numparse: not a number")

	// ErrNonPositive is returned by Positive for values <= 0.
	ErrNonPositive = errors.New("numparse: value must be positive")

	// ErrNegative is returned by NonNegative for values < 0.
	ErrNegative = errors.New("numparse: value must not be negative")
)

// Decimal parses a numeric form field. "12," and "12." both parse as 12;
// "+1,5" parses as 1.5.
func Decimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, ErrEmpty
	}

	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "+" || s == "-" {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}
	return d, nil
}

// Positive parses a field and requires a strictly positive value.
func Positive(s string) (decimal.Decimal, error) {
	d, err := Decimal(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, ErrNonPositive
	}
	return d, nil
}

// NonNegative parses a field and requires a value >= 0.
func NonNegative(s string) (decimal.Decimal, error) {
	d, err := Decimal(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.IsNegative() {
		return decimal.Decimal{}, ErrNegative
	}
	return d, nil
}

// Clamp bounds v to [min, max]; a nil bound is unbounded on that side.
// Clamping is a blur-time concern: callers apply it when a field loses
// focus, never on every keystroke.
func Clamp(v decimal.Decimal, min, max *decimal.Decimal) decimal.Decimal {
	if min != nil && v.LessThan(*min) {
		return *min
	}
	if max != nil && v.GreaterThan(*max) {
		return *max
	}
	return v
}
