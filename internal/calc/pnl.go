package calc

import (
	"github.com/shopspring/decimal"

	"github.com/tradecalc/calc-engine/internal/instrument"
)

// PnLInput are the inputs for a notional-terms PnL calculation. FeeRate is
// optional; the zero value means no fees.
type PnLInput struct {
	Side       Side            `json:"side"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	ExitPrice  decimal.Decimal `json:"exit_price"`
	Quantity   decimal.Decimal `json:"quantity"`
	FeeRate    decimal.Decimal `json:"fee_rate"`
}

// PnLResult holds notional values, gross/net profit and ROI for a closed
// (or mark-to-market) position. NetPnL = GrossPnL - Fees and
// ROI = NetPnL / EntryNotional.
type PnLResult struct {
	EntryNotional decimal.Decimal `json:"entry_notional"`
	ExitNotional  decimal.Decimal `json:"exit_notional"`
	GrossPnL      decimal.Decimal `json:"gross_pnl"`
	Fees          decimal.Decimal `json:"fees"`
	NetPnL        decimal.Decimal `json:"net_pnl"`
	ROI           decimal.Decimal `json:"roi"`
}

// PnL computes directional profit/loss in notional terms.
//
// Gross PnL is (exit - entry) × quantity for long and the negation for
// short. Fees apply the rate to both the opening and closing notional
// (round-trip fee model), not just one side.
func PnL(in PnLInput) (*PnLResult, error) {
	if !in.Side.Valid() {
		return nil, ErrInvalidSide
	}
	if !in.EntryPrice.IsPositive() || !in.ExitPrice.IsPositive() {
		return nil, ErrNonPositivePrice
	}
	if !in.Quantity.IsPositive() {
		return nil, ErrNonPositiveQuantity
	}
	if in.FeeRate.IsNegative() {
		return nil, ErrNegativeFeeRate
	}

	entryNotional := in.EntryPrice.Mul(in.Quantity)
	exitNotional := in.ExitPrice.Mul(in.Quantity)

	gross := in.ExitPrice.Sub(in.EntryPrice).Mul(in.Quantity).Mul(in.Side.sign())
	fees := in.FeeRate.Mul(entryNotional.Add(exitNotional))
	net := gross.Sub(fees)

	// EntryNotional is positive given the input constraints; guard anyway so
	// a relaxed caller never divides by zero.
	roi := decimal.Zero
	if entryNotional.IsPositive() {
		roi = net.Div(entryNotional)
	}

	return &PnLResult{
		EntryNotional: entryNotional,
		ExitNotional:  exitNotional,
		GrossPnL:      gross,
		Fees:          fees,
		NetPnL:        net,
		ROI:           roi,
	}, nil
}

// MarkPnLResult is the instrument-native mark-to-market PnL. Move is the
// signed price movement expressed in the instrument's unit (points or
// pips), favorable-positive for the given side.
type MarkPnLResult struct {
	PnL  decimal.Decimal `json:"pnl"`
	Move decimal.Decimal `json:"move"`
	Unit instrument.Unit `json:"unit"`
}

// MarkPnL computes mark-to-market PnL in instrument-native units scaled by
// the spec's dollar value per unit per contract/lot:
//
//	futures: pnl = (mark - entry) × sign × pointValue × quantity
//	forex:   pnl = ((mark - entry) / pipSize) × sign × pipValuePerLot × quantity
func MarkPnL(side Side, entryPrice, markPrice, quantity decimal.Decimal, spec instrument.Spec) (*MarkPnLResult, error) {
	if !side.Valid() {
		return nil, ErrInvalidSide
	}
	if !entryPrice.IsPositive() || !markPrice.IsPositive() {
		return nil, ErrNonPositivePrice
	}
	if !quantity.IsPositive() {
		return nil, ErrNonPositiveQuantity
	}

	unitValue, err := spec.UnitValue()
	if err != nil {
		return nil, err
	}
	units, err := spec.UnitsFromPrice(markPrice.Sub(entryPrice))
	if err != nil {
		return nil, err
	}

	move := units.Mul(side.sign())
	return &MarkPnLResult{
		PnL:  move.Mul(unitValue).Mul(quantity),
		Move: move,
		Unit: spec.Unit(),
	}, nil
}
