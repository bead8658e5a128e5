package instrument

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestUnitValue_DerivedFromTicks(t *testing.T) {
	spec := Spec{Kind: Futures, TickSize: d(0.25), TickValue: d(12.50)}
	v, err := spec.UnitValue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Equal(d(50)) {
		t.Errorf("expected point value 50, got %s", v)
	}
}

func TestUnitValue_OverrideBeatsDerivation(t *testing.T) {
	spec := Spec{Kind: Futures, TickSize: d(0.25), TickValue: d(12.50), PointValueOverride: d(5)}
	v, err := spec.UnitValue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Equal(d(5)) {
		t.Errorf("expected override 5 to win, got %s", v)
	}
}

func TestUnitValue_OverrideSkipsTickValidation(t *testing.T) {
	// A positive override stands alone; the tick fields may be unset.
	spec := Spec{Kind: Futures, PointValueOverride: d(20)}
	v, err := spec.UnitValue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Equal(d(20)) {
		t.Errorf("expected 20, got %s", v)
	}
}

func TestUnitValue_Forex(t *testing.T) {
	spec := Spec{Kind: Forex, PipSize: d(0.0001), PipValue: d(10)}
	v, err := spec.UnitValue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Equal(d(10)) {
		t.Errorf("expected pip value 10, got %s", v)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want error
	}{
		{"valid futures", Spec{Kind: Futures, TickSize: d(0.25), TickValue: d(12.50)}, nil},
		{"valid forex", Spec{Kind: Forex, PipSize: d(0.0001), PipValue: d(10)}, nil},
		{"unknown kind", Spec{Kind: "crypto"}, ErrUnknownKind},
		{"zero tick size", Spec{Kind: Futures, TickValue: d(12.50)}, ErrInvalidTickSpec},
		{"zero tick value", Spec{Kind: Futures, TickSize: d(0.25)}, ErrInvalidTickSpec},
		{"zero pip size", Spec{Kind: Forex, PipValue: d(10)}, ErrInvalidPipSpec},
		{"zero pip value", Spec{Kind: Forex, PipSize: d(0.0001)}, ErrInvalidPipSpec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.spec.Validate(); err != tt.want {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUnit(t *testing.T) {
	if u := (Spec{Kind: Futures}).Unit(); u != UnitPoints {
		t.Errorf("expected points, got %s", u)
	}
	if u := (Spec{Kind: Forex}).Unit(); u != UnitPips {
		t.Errorf("expected pips, got %s", u)
	}
}

func TestUnitConversions_RoundTrip(t *testing.T) {
	forex := Spec{Kind: Forex, PipSize: d(0.0001), PipValue: d(10)}

	units, err := forex.UnitsFromPrice(d(0.0050))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !units.Equal(d(50)) {
		t.Errorf("expected 50 pips, got %s", units)
	}

	delta, err := forex.PriceFromUnits(units)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !delta.Equal(d(0.0050)) {
		t.Errorf("expected price delta 0.005, got %s", delta)
	}

	futures := Spec{Kind: Futures, TickSize: d(0.25), TickValue: d(12.50)}
	points, err := futures.UnitsFromPrice(d(-3.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !points.Equal(d(-3.5)) {
		t.Errorf("futures deltas pass through unchanged, got %s", points)
	}
}
