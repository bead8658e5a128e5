package calc

import "github.com/shopspring/decimal"

// LiquidationResult is the simplified liquidation-price estimate.
// Simplified is always true: the model ignores wallet-level cross-margin,
// funding, and tiered maintenance-margin brackets, and the consuming layer
// must surface that disclaimer with the result.
type LiquidationResult struct {
	Price      decimal.Decimal `json:"liquidation_price"`
	Simplified bool            `json:"simplified"`
}

// LiquidationPrice estimates the price at which a leveraged linear
// position would be force-closed:
//
//	long:  entry × (1 - 1/leverage + mmr), clamped to never exceed entry
//	short: entry × (1 + 1/leverage - mmr), clamped to never fall below entry
//
// The result is additionally clamped to a non-negative floor. Pass
// DefaultMaintenanceMarginRate when the caller has no explicit rate.
func LiquidationPrice(side Side, entryPrice, leverage, maintenanceMarginRate decimal.Decimal) (*LiquidationResult, error) {
	if !side.Valid() {
		return nil, ErrInvalidSide
	}
	if !entryPrice.IsPositive() {
		return nil, ErrNonPositivePrice
	}
	if !leverage.IsPositive() {
		return nil, ErrNonPositiveLeverage
	}
	if maintenanceMarginRate.IsNegative() {
		return nil, ErrNegativeMaintenanceMargin
	}

	one := decimal.NewFromInt(1)
	inv := one.Div(leverage)

	var price decimal.Decimal
	if side == Long {
		price = entryPrice.Mul(one.Sub(inv).Add(maintenanceMarginRate))
		// A long's liquidation price cannot be above its entry.
		if price.GreaterThan(entryPrice) {
			price = entryPrice
		}
	} else {
		price = entryPrice.Mul(one.Add(inv).Sub(maintenanceMarginRate))
		// A short's liquidation price cannot be below its entry.
		if price.LessThan(entryPrice) {
			price = entryPrice
		}
	}

	if price.IsNegative() {
		price = decimal.Zero
	}

	return &LiquidationResult{Price: price, Simplified: true}, nil
}
