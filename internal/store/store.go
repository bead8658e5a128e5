// Package store defines the persistence interface for the instrument
// preset catalog. Implementations include PostgreSQL (source of truth),
// Redis (read-through cache), and in-memory (for testing and for running
// without a database).
package store

import (
	"context"
	"errors"

	"github.com/tradecalc/calc-engine/internal/model"
)

// ErrPresetNotFound is returned when no preset exists for a symbol.
var ErrPresetNotFound = errors.New("store: preset not found")

// Store is the preset catalog interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer.
type Store interface {
	// UpsertPreset creates or replaces the preset for its symbol.
	UpsertPreset(ctx context.Context, p *model.Preset) error

	// GetPreset retrieves a preset by symbol.
	GetPreset(ctx context.Context, symbol string) (*model.Preset, error)

	// ListPresets returns all presets ordered by symbol.
	ListPresets(ctx context.Context) ([]model.Preset, error)
}
