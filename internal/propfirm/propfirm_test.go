package propfirm

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tradecalc/calc-engine/internal/calc"
	"github.com/tradecalc/calc-engine/internal/instrument"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func esSpec() instrument.Spec {
	return instrument.Spec{Kind: instrument.Futures, TickSize: d(0.25), TickValue: d(12.50)}
}

func eurusdSpec() instrument.Spec {
	return instrument.Spec{Kind: instrument.Forex, PipSize: d(0.0001), PipValue: d(10)}
}

func TestEffectiveRemaining(t *testing.T) {
	tests := []struct {
		name           string
		overall, daily float64
		want           float64
		ok             bool
	}{
		{"daily is tighter", 500, 300, 300, true},
		{"overall is tighter", 200, 300, 200, true},
		{"only overall", 500, 0, 500, true},
		{"only daily", 0, 300, 300, true},
		{"negative overall treated absent", -100, 300, 300, true},
		{"neither", 0, 0, 0, false},
		{"both negative", -1, -1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EffectiveRemaining(d(tt.overall), d(tt.daily))
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && !got.Equal(d(tt.want)) {
				t.Errorf("expected %v, got %s", tt.want, got)
			}
		})
	}
}

func TestBreachPrice_LongFutures(t *testing.T) {
	res, err := BreachPrice(BreachQuery{
		Side:              calc.Long,
		AverageEntry:      d(5000),
		Quantity:          d(2),
		RemainingDrawdown: d(500),
		Spec:              esSpec(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 500 / (50 × 2) = 5 points down from entry.
	if !res.MaxAdverseMove.Equal(d(5)) {
		t.Errorf("expected max adverse move 5, got %s", res.MaxAdverseMove)
	}
	if !res.BreachPrice.Equal(d(4995)) {
		t.Errorf("expected breach at 4995, got %s", res.BreachPrice)
	}
	if res.Unit != instrument.UnitPoints {
		t.Errorf("expected points unit, got %s", res.Unit)
	}
	if !res.EffectiveRemaining.Equal(d(500)) {
		t.Errorf("expected effective remaining 500, got %s", res.EffectiveRemaining)
	}
}

func TestBreachPrice_ShortMovesUp(t *testing.T) {
	res, err := BreachPrice(BreachQuery{
		Side:              calc.Short,
		AverageEntry:      d(5000),
		Quantity:          d(2),
		RemainingDrawdown: d(500),
		Spec:              esSpec(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.BreachPrice.Equal(d(5005)) {
		t.Errorf("expected breach at 5005, got %s", res.BreachPrice)
	}
}

func TestBreachPrice_DailyCeilingApplies(t *testing.T) {
	res, err := BreachPrice(BreachQuery{
		Side:               calc.Long,
		AverageEntry:       d(5000),
		Quantity:           d(2),
		RemainingDrawdown:  d(500),
		DailyLossRemaining: d(300),
		Spec:               esSpec(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.EffectiveRemaining.Equal(d(300)) {
		t.Errorf("expected the tighter daily ceiling, got %s", res.EffectiveRemaining)
	}
	if !res.BreachPrice.Equal(d(4997)) {
		t.Errorf("expected breach at 4997, got %s", res.BreachPrice)
	}
}

func TestBreachPrice_ForexPips(t *testing.T) {
	res, err := BreachPrice(BreachQuery{
		Side:              calc.Long,
		AverageEntry:      d(1.0850),
		Quantity:          d(1),
		RemainingDrawdown: d(300),
		Spec:              eurusdSpec(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 300 / (10 × 1) = 30 pips = 0.0030 in price.
	if !res.MaxAdverseMove.Equal(d(30)) {
		t.Errorf("expected 30 pips, got %s", res.MaxAdverseMove)
	}
	if !res.BreachPrice.Equal(d(1.0820)) {
		t.Errorf("expected breach at 1.0820, got %s", res.BreachPrice)
	}
	if res.Unit != instrument.UnitPips {
		t.Errorf("expected pips unit, got %s", res.Unit)
	}
}

func TestBreachPrice_MonotonicInAllowance(t *testing.T) {
	// More remaining allowance must put the long breach further below entry.
	q := BreachQuery{
		Side:         calc.Long,
		AverageEntry: d(5000),
		Quantity:     d(2),
		Spec:         esSpec(),
	}
	q.RemainingDrawdown = d(500)
	near, err := BreachPrice(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q.RemainingDrawdown = d(600)
	far, err := BreachPrice(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !far.BreachPrice.LessThan(near.BreachPrice) {
		t.Errorf("breach %s with more allowance should be below %s", far.BreachPrice, near.BreachPrice)
	}
}

func TestBreachPrice_NoAllowance(t *testing.T) {
	_, err := BreachPrice(BreachQuery{
		Side:         calc.Long,
		AverageEntry: d(5000),
		Quantity:     d(2),
		Spec:         esSpec(),
	})
	if err != ErrNoAllowance {
		t.Errorf("expected ErrNoAllowance, got %v", err)
	}
}

func TestBreachPrice_Validation(t *testing.T) {
	q := BreachQuery{
		Side:              calc.Long,
		AverageEntry:      d(5000),
		Quantity:          d(2),
		RemainingDrawdown: d(500),
		Spec:              esSpec(),
	}

	bad := q
	bad.Side = "flat"
	if _, err := BreachPrice(bad); err != calc.ErrInvalidSide {
		t.Errorf("expected ErrInvalidSide, got %v", err)
	}

	bad = q
	bad.AverageEntry = d(0)
	if _, err := BreachPrice(bad); err != calc.ErrNonPositivePrice {
		t.Errorf("expected ErrNonPositivePrice, got %v", err)
	}

	bad = q
	bad.Quantity = d(0)
	if _, err := BreachPrice(bad); err != calc.ErrNonPositiveQuantity {
		t.Errorf("expected ErrNonPositiveQuantity, got %v", err)
	}

	bad = q
	bad.Spec = instrument.Spec{Kind: instrument.Futures}
	if _, err := BreachPrice(bad); err != instrument.ErrInvalidTickSpec {
		t.Errorf("expected ErrInvalidTickSpec, got %v", err)
	}
}

func TestRiskToStop(t *testing.T) {
	risk, err := RiskToStop(calc.Long, d(5000), d(1), d(4990), esSpec())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !risk.Equal(d(500)) {
		t.Errorf("expected risk 500, got %s", risk)
	}

	// Short with the stop above entry carries the same magnitude.
	risk, err = RiskToStop(calc.Short, d(5000), d(1), d(5010), esSpec())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !risk.Equal(d(500)) {
		t.Errorf("expected risk 500, got %s", risk)
	}
}

func TestRiskToStop_NonPositiveStop(t *testing.T) {
	if _, err := RiskToStop(calc.Long, d(5000), d(1), d(0), esSpec()); err != ErrNonPositiveStop {
		t.Errorf("expected ErrNonPositiveStop, got %v", err)
	}
}

func TestRiskToStopFromLegs(t *testing.T) {
	legs := []calc.Leg{
		{Price: d(5000), Quantity: d(1)},
		{Price: d(5010), Quantity: d(1)},
	}
	// Average 5005, qty 2, stop 10 points below: 10 × 50 × 2 = 1000.
	risk, err := RiskToStopFromLegs(calc.Long, legs, d(4995), esSpec())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !risk.Equal(d(1000)) {
		t.Errorf("expected risk 1000, got %s", risk)
	}
}

func TestRiskToStopFromLegs_InvalidLegs(t *testing.T) {
	legs := []calc.Leg{{Price: d(5000), Quantity: d(0)}}
	if _, err := RiskToStopFromLegs(calc.Long, legs, d(4995), esSpec()); err != calc.ErrInvalidLeg {
		t.Errorf("expected ErrInvalidLeg, got %v", err)
	}
}
