package calc

import "github.com/shopspring/decimal"

// Outcome discriminates the target-average solver's result variants. These
// are meaningful outcomes, not failures: "reverse" tells the trader the
// target needs a position reduction, which the UI renders as actionable
// information rather than an error banner.
type Outcome string

const (
	// OutcomeOK: the target is reachable by adding Quantity at the new price.
	OutcomeOK Outcome = "ok"

	// OutcomeReverse: the raw solution is negative. Reaching the target
	// requires reducing or reversing the position; Quantity carries the
	// absolute magnitude.
	OutcomeReverse Outcome = "reverse"

	// OutcomeInvalid: the new price equals the target average, so the
	// equation is undefined (division by zero).
	OutcomeInvalid Outcome = "invalid"
)

// TargetAverageResult is a tagged result; Quantity is meaningful only for
// the ok and reverse outcomes and is always non-negative.
type TargetAverageResult struct {
	Outcome  Outcome         `json:"outcome"`
	Quantity decimal.Decimal `json:"quantity"`
}

// TargetAverage solves for the additional quantity x that moves a
// position's blended average to exactly the target:
//
//	target = (currentPrice×currentQty + newPrice×x) / (currentQty + x)
//	⇒ x = currentQty × (target - currentPrice) / (newPrice - target)
//
// All four inputs must be strictly positive; that failure is a general
// input-validation error, separate from the invalid/reverse/ok outcome
// tags which apply only once positivity holds.
func TargetAverage(currentPrice, currentQuantity, targetAverage, newPrice decimal.Decimal) (*TargetAverageResult, error) {
	if !currentPrice.IsPositive() || !targetAverage.IsPositive() || !newPrice.IsPositive() {
		return nil, ErrNonPositivePrice
	}
	if !currentQuantity.IsPositive() {
		return nil, ErrNonPositiveQuantity
	}

	denom := newPrice.Sub(targetAverage)
	if denom.IsZero() {
		return &TargetAverageResult{Outcome: OutcomeInvalid, Quantity: decimal.Zero}, nil
	}

	x := currentQuantity.Mul(targetAverage.Sub(currentPrice)).Div(denom)
	if x.IsNegative() {
		return &TargetAverageResult{Outcome: OutcomeReverse, Quantity: x.Abs()}, nil
	}
	return &TargetAverageResult{Outcome: OutcomeOK, Quantity: x}, nil
}
