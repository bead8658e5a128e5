package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradecalc/calc-engine/internal/instrument"
	"github.com/tradecalc/calc-engine/internal/model"
)

// defaultPresets are the instrument specs seeded on first start. Pip values
// are per standard lot for a USD account and are manually maintained, not
// derived.
func defaultPresets() []model.Preset {
	fut := func(symbol, desc, tickSize, tickValue string, example map[string]string) model.Preset {
		return model.Preset{
			Symbol:      symbol,
			Description: desc,
			Spec: instrument.Spec{
				Kind:      instrument.Futures,
				TickSize:  mustDecimal(tickSize),
				TickValue: mustDecimal(tickValue),
			},
			Example: example,
		}
	}
	fx := func(symbol, desc, pipSize, pipValue string, example map[string]string) model.Preset {
		return model.Preset{
			Symbol:      symbol,
			Description: desc,
			Spec: instrument.Spec{
				Kind:     instrument.Forex,
				PipSize:  mustDecimal(pipSize),
				PipValue: mustDecimal(pipValue),
			},
			Example: example,
		}
	}

	return []model.Preset{
		fut("ES", "E-mini S&P 500", "0.25", "12.50", map[string]string{
			"entry_price": "5000.00", "mark_price": "5010.00", "quantity": "1",
		}),
		fut("NQ", "E-mini Nasdaq-100", "0.25", "5.00", map[string]string{
			"entry_price": "17500.00", "mark_price": "17550.00", "quantity": "1",
		}),
		fut("CL", "Crude Oil", "0.01", "10.00", map[string]string{
			"entry_price": "78.50", "mark_price": "79.00", "quantity": "1",
		}),
		fut("GC", "Gold", "0.10", "10.00", map[string]string{
			"entry_price": "2350.0", "mark_price": "2360.0", "quantity": "1",
		}),
		fx("EURUSD", "Euro / US Dollar", "0.0001", "10.00", map[string]string{
			"entry_price": "1.0850", "mark_price": "1.0900", "quantity": "1",
		}),
		fx("GBPUSD", "British Pound / US Dollar", "0.0001", "10.00", map[string]string{
			"entry_price": "1.2700", "mark_price": "1.2750", "quantity": "1",
		}),
		fx("USDJPY", "US Dollar / Japanese Yen", "0.01", "6.70", map[string]string{
			"entry_price": "155.00", "mark_price": "154.50", "quantity": "1",
		}),
	}
}

// SeedDefaults inserts the default presets that are not already present.
// Existing presets are never overwritten, so operator edits survive restarts.
func SeedDefaults(ctx context.Context, st Store) error {
	for _, p := range defaultPresets() {
		if _, err := st.GetPreset(ctx, p.Symbol); err == nil {
			continue
		}
		p.UpdatedAt = time.Now().UTC()
		if err := st.UpsertPreset(ctx, &p); err != nil {
			return err
		}
	}
	return nil
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
