// Package calc implements the stateless trading calculators: weighted
// average entry price, directional profit/loss with round-trip fees,
// mark-to-market PnL in instrument-native units, a simplified
// liquidation-price estimate, and the target-average solver.
//
// All monetary values use shopspring/decimal — never float64 for money.
// Every function is a pure function of its arguments; no state is held
// between calls, and a failed validation returns an error rather than a
// zero result.
package calc

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Side is the direction of a position. It determines the sign of every
// directional calculation; the sign is never inferred from prices.
type Side string

const (
	// Long profits when the price rises.
	Long Side = "long"

	// Short profits when the price falls.
	Short Side = "short"
)

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	return s == Long || s == Short
}

// sign returns +1 for long and -1 for short.
func (s Side) sign() decimal.Decimal {
	if s == Short {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

var (
	// ErrInvalidSide is returned when a side is neither long nor short.
	ErrInvalidSide = errors.New("calc: side must be long or short")

	// ErrNonPositivePrice is returned when a required price is zero or negative.
	ErrNonPositivePrice = errors.New("calc: price must be positive")

	// ErrNonPositiveQuantity is returned when a required quantity is zero or negative.
	ErrNonPositiveQuantity = errors.New("calc: quantity must be positive")

	// ErrNegativeFeeRate is returned when the fee rate is negative.
	ErrNegativeFeeRate = errors.New("calc: fee rate must not be negative")

	// ErrNonPositiveLeverage is returned when leverage is zero or negative.
	ErrNonPositiveLeverage = errors.New("calc: leverage must be positive")

	// ErrNegativeMaintenanceMargin is returned when the maintenance margin
	// rate is negative.
	ErrNegativeMaintenanceMargin = errors.New("calc: maintenance margin rate must not be negative")

	// ErrNoLegs is returned when an average requires at least one entry leg.
	ErrNoLegs = errors.New("calc: at least one entry leg is required")

	// ErrInvalidLeg is returned by the strict average when a leg's price or
	// quantity is not strictly positive.
	ErrInvalidLeg = errors.New("calc: leg price and quantity must be positive")
)

// DefaultMaintenanceMarginRate is the maintenance margin rate used by the
// liquidation estimate when the caller does not supply one.
var DefaultMaintenanceMarginRate = decimal.NewFromFloat(0.005)
