// Package model defines the domain types shared across calc-engine.
// All monetary values use shopspring/decimal — never float64 for money.
package model

import (
	"time"

	"github.com/tradecalc/calc-engine/internal/instrument"
)

// Preset is server-side reference data for one instrument: its value
// specification plus example form values backing the UI's "fill example
// values" action. Presets are catalog data, not user input; user inputs
// are never persisted.
type Preset struct {
	Symbol      string            `json:"symbol" db:"symbol"`
	Description string            `json:"description" db:"description"`
	Spec        instrument.Spec   `json:"spec"`
	Example     map[string]string `json:"example,omitempty" db:"example"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}
