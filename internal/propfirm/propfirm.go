// Package propfirm implements the prop-firm drawdown calculators: the
// adverse price level at which a remaining loss allowance is exhausted,
// the effective allowance when both an overall and a daily ceiling exist,
// and the absolute dollar risk to a chosen stop price.
package propfirm

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/tradecalc/calc-engine/internal/calc"
	"github.com/tradecalc/calc-engine/internal/instrument"
)

var (
	// ErrNoAllowance is returned when neither the overall remaining
	// drawdown nor the daily loss remaining is positive; the breach
	// computation is skipped entirely, producing no result.
	ErrNoAllowance = errors.New("propfirm: no positive drawdown allowance remains")

	// ErrNonPositiveStop is returned when the stop price is zero or negative.
	ErrNonPositiveStop = errors.New("propfirm: stop price must be positive")
)

// EffectiveRemaining selects the allowance used for breach computation:
// the minimum of whichever of the two ceilings are present and positive.
// A zero or negative ceiling counts as absent. Returns false when neither
// is positive.
func EffectiveRemaining(remainingDrawdown, dailyLossRemaining decimal.Decimal) (decimal.Decimal, bool) {
	overall := remainingDrawdown.IsPositive()
	daily := dailyLossRemaining.IsPositive()

	switch {
	case overall && daily:
		if dailyLossRemaining.LessThan(remainingDrawdown) {
			return dailyLossRemaining, true
		}
		return remainingDrawdown, true
	case overall:
		return remainingDrawdown, true
	case daily:
		return dailyLossRemaining, true
	default:
		return decimal.Decimal{}, false
	}
}

// BreachQuery describes a position against its remaining loss allowances.
// A zero or negative allowance field is treated as absent.
type BreachQuery struct {
	Side               calc.Side
	AverageEntry       decimal.Decimal
	Quantity           decimal.Decimal
	RemainingDrawdown  decimal.Decimal
	DailyLossRemaining decimal.Decimal
	Spec               instrument.Spec
}

// BreachResult is the price level at which the effective allowance would
// be fully consumed. MaxAdverseMove is expressed in the instrument's unit.
type BreachResult struct {
	MaxAdverseMove     decimal.Decimal `json:"max_adverse_move"`
	BreachPrice        decimal.Decimal `json:"breach_price"`
	Unit               instrument.Unit `json:"unit"`
	EffectiveRemaining decimal.Decimal `json:"effective_remaining"`
}

// BreachPrice computes the adverse price level that exhausts the effective
// remaining allowance. The adverse direction is opposite the position's
// favorable direction: price falling for long, rising for short.
//
//	maxAdverseMove = effectiveRemaining / (unitValue × quantity)
//	breachPrice    = averageEntry ∓ priceDelta(maxAdverseMove)
func BreachPrice(q BreachQuery) (*BreachResult, error) {
	if !q.Side.Valid() {
		return nil, calc.ErrInvalidSide
	}
	if !q.AverageEntry.IsPositive() {
		return nil, calc.ErrNonPositivePrice
	}
	if !q.Quantity.IsPositive() {
		return nil, calc.ErrNonPositiveQuantity
	}

	effective, ok := EffectiveRemaining(q.RemainingDrawdown, q.DailyLossRemaining)
	if !ok {
		return nil, ErrNoAllowance
	}

	unitValue, err := q.Spec.UnitValue()
	if err != nil {
		return nil, err
	}

	move := effective.Div(unitValue.Mul(q.Quantity))
	priceDelta, err := q.Spec.PriceFromUnits(move)
	if err != nil {
		return nil, err
	}

	breach := q.AverageEntry.Sub(priceDelta)
	if q.Side == calc.Short {
		breach = q.AverageEntry.Add(priceDelta)
	}

	return &BreachResult{
		MaxAdverseMove:     move,
		BreachPrice:        breach,
		Unit:               q.Spec.Unit(),
		EffectiveRemaining: effective,
	}, nil
}

// RiskToStop computes the absolute dollar loss realized if the position
// were closed at stopPrice, reusing the mark-to-market PnL with the stop
// as the mark. Risk is reported as a positive magnitude regardless of side.
func RiskToStop(side calc.Side, averageEntry, quantity, stopPrice decimal.Decimal, spec instrument.Spec) (decimal.Decimal, error) {
	if !stopPrice.IsPositive() {
		return decimal.Decimal{}, ErrNonPositiveStop
	}
	res, err := calc.MarkPnL(side, averageEntry, stopPrice, quantity, spec)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return res.PnL.Abs(), nil
}

// RiskToStopFromLegs first blends the entry legs into an average position
// and then computes the risk to the stop. An invalid leg set fails the
// whole calculation, matching the strict average-entry variant.
func RiskToStopFromLegs(side calc.Side, legs []calc.Leg, stopPrice decimal.Decimal, spec instrument.Spec) (decimal.Decimal, error) {
	avg, err := calc.AverageEntry(legs)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return RiskToStop(side, avg.AveragePrice, avg.TotalQuantity, stopPrice, spec)
}
