package calc

import "github.com/shopspring/decimal"

// Leg is a single fill (price, quantity pair) contributing to a blended
// average position.
type Leg struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Valid reports whether both price and quantity are strictly positive.
func (l Leg) Valid() bool {
	return l.Price.IsPositive() && l.Quantity.IsPositive()
}

// AverageEntryResult is the quantity-weighted average over a set of legs.
// Invariants: TotalCost = Σ(price_i × quantity_i) and
// AveragePrice = TotalCost / TotalQuantity.
type AverageEntryResult struct {
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	AveragePrice  decimal.Decimal `json:"average_price"`
	TotalCost     decimal.Decimal `json:"total_cost"`
}

// AverageEntry computes the quantity-weighted average entry price over the
// given legs. This is the strict variant: every leg must have strictly
// positive price and quantity, and at least one leg is required. An invalid
// leg fails the whole calculation rather than being silently excluded.
func AverageEntry(legs []Leg) (*AverageEntryResult, error) {
	if len(legs) == 0 {
		return nil, ErrNoLegs
	}
	for _, l := range legs {
		if !l.Valid() {
			return nil, ErrInvalidLeg
		}
	}

	qty, cost := weightedSum(legs)
	return &AverageEntryResult{
		TotalQuantity: qty,
		AveragePrice:  cost.Div(qty),
		TotalCost:     cost,
	}, nil
}

// BlendResult is the optional-second-leg average. AverageShift is the
// distance the blended average moved from the first leg's price.
type BlendResult struct {
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	AveragePrice  decimal.Decimal `json:"average_price"`
	AverageShift  decimal.Decimal `json:"average_shift"`
	HasSecondLeg  bool            `json:"has_second_leg"`
}

// BlendEntry computes the blended average of a required first leg and an
// optional second leg. An invalid second leg degrades gracefully: it is
// excluded and the result reflects the first leg alone. An invalid first
// leg still fails validation.
func BlendEntry(first, second Leg) (*BlendResult, error) {
	if !first.Valid() {
		return nil, ErrInvalidLeg
	}

	legs := []Leg{first}
	hasSecond := second.Valid()
	if hasSecond {
		legs = append(legs, second)
	}

	qty, cost := weightedSum(legs)
	avg := cost.Div(qty)

	return &BlendResult{
		TotalQuantity: qty,
		AveragePrice:  avg,
		AverageShift:  avg.Sub(first.Price),
		HasSecondLeg:  hasSecond,
	}, nil
}

// weightedSum returns total quantity and total cost over validated legs.
func weightedSum(legs []Leg) (qty, cost decimal.Decimal) {
	for _, l := range legs {
		qty = qty.Add(l.Quantity)
		cost = cost.Add(l.Price.Mul(l.Quantity))
	}
	return qty, cost
}
