// Package instrument defines the dollar-value specifications that convert
// price movement into money for futures contracts and forex lots.
//
// Futures PnL is not proportional to price × quantity: it is proportional
// to price movement × a fixed per-point dollar value × number of contracts.
// The point value is derived from the exchange tick specification
// (tickValue / tickSize) unless an explicit override is supplied. Forex
// works the same way in pips, with the pip value per lot entered directly.
package instrument

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Kind discriminates the two supported instrument families.
type Kind string

const (
	Futures Kind = "futures"
	Forex   Kind = "forex"
)

// Unit tags which instrument-native unit a move is expressed in.
type Unit string

const (
	UnitPoints Unit = "points"
	UnitPips   Unit = "pips"
)

var (
	// ErrUnknownKind is returned for a kind other than futures or forex.
	ErrUnknownKind = errors.New("instrument: kind must be futures or forex")

	// ErrInvalidTickSpec is returned when a futures tick size or tick value
	// is not strictly positive and no positive point-value override exists.
	ErrInvalidTickSpec = errors.New("instrument: tick size and tick value must be positive")

	// ErrInvalidPipSpec is returned when a forex pip size or pip value per
	// lot is not strictly positive.
	ErrInvalidPipSpec = errors.New("instrument: pip size and pip value must be positive")
)

// Spec is an instrument value specification. Exactly one family of fields
// applies depending on Kind: tick/point fields for futures, pip fields for
// forex. The zero decimal means "not set".
type Spec struct {
	Kind Kind `json:"kind" db:"kind"`

	// Futures: point value = PointValueOverride when positive, else
	// TickValue / TickSize.
	TickSize           decimal.Decimal `json:"tick_size" db:"tick_size"`
	TickValue          decimal.Decimal `json:"tick_value" db:"tick_value"`
	PointValueOverride decimal.Decimal `json:"point_value_override" db:"point_value_override"`

	// Forex: pip value per standard lot, entered directly (no derivation).
	PipSize  decimal.Decimal `json:"pip_size" db:"pip_size"`
	PipValue decimal.Decimal `json:"pip_value" db:"pip_value"`
}

// Validate checks that the spec resolves to a positive unit value.
func (s Spec) Validate() error {
	switch s.Kind {
	case Futures:
		if s.PointValueOverride.IsPositive() {
			return nil
		}
		if !s.TickSize.IsPositive() || !s.TickValue.IsPositive() {
			return ErrInvalidTickSpec
		}
		return nil
	case Forex:
		if !s.PipSize.IsPositive() || !s.PipValue.IsPositive() {
			return ErrInvalidPipSpec
		}
		return nil
	default:
		return ErrUnknownKind
	}
}

// Unit returns the instrument-native unit for price moves.
func (s Spec) Unit() Unit {
	if s.Kind == Forex {
		return UnitPips
	}
	return UnitPoints
}

// UnitValue resolves the dollar value of a one-unit move for one
// contract/lot: the point value for futures (override wins unconditionally
// when positive), the pip value per lot for forex.
func (s Spec) UnitValue() (decimal.Decimal, error) {
	if err := s.Validate(); err != nil {
		return decimal.Decimal{}, err
	}
	switch s.Kind {
	case Futures:
		if s.PointValueOverride.IsPositive() {
			return s.PointValueOverride, nil
		}
		return s.TickValue.Div(s.TickSize), nil
	default:
		return s.PipValue, nil
	}
}

// UnitsFromPrice converts a signed price delta into instrument-native
// units: points pass through, pips divide by the pip size.
func (s Spec) UnitsFromPrice(delta decimal.Decimal) (decimal.Decimal, error) {
	if err := s.Validate(); err != nil {
		return decimal.Decimal{}, err
	}
	if s.Kind == Forex {
		return delta.Div(s.PipSize), nil
	}
	return delta, nil
}

// PriceFromUnits converts instrument-native units back into a price delta.
func (s Spec) PriceFromUnits(units decimal.Decimal) (decimal.Decimal, error) {
	if err := s.Validate(); err != nil {
		return decimal.Decimal{}, err
	}
	if s.Kind == Forex {
		return units.Mul(s.PipSize), nil
	}
	return units, nil
}
