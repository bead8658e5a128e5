package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tradecalc/calc-engine/internal/instrument"
	"github.com/tradecalc/calc-engine/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// All instrument values are stored as NUMERIC for exact decimal precision.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the presets table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS presets (
			symbol               TEXT PRIMARY KEY,
			description          TEXT NOT NULL DEFAULT '',
			kind                 TEXT NOT NULL,
			tick_size            NUMERIC NOT NULL DEFAULT 0,
			tick_value           NUMERIC NOT NULL DEFAULT 0,
			point_value_override NUMERIC NOT NULL DEFAULT 0,
			pip_size             NUMERIC NOT NULL DEFAULT 0,
			pip_value            NUMERIC NOT NULL DEFAULT 0,
			example              JSONB,
			updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

func (s *PostgresStore) UpsertPreset(ctx context.Context, p *model.Preset) error {
	example, err := json.Marshal(p.Example)
	if err != nil {
		return fmt.Errorf("marshal example values: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO presets (symbol, description, kind, tick_size, tick_value, point_value_override, pip_size, pip_value, example, updated_at)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5::NUMERIC, $6::NUMERIC, $7::NUMERIC, $8::NUMERIC, $9, $10)
		 ON CONFLICT (symbol) DO UPDATE SET
		   description = EXCLUDED.description,
		   kind = EXCLUDED.kind,
		   tick_size = EXCLUDED.tick_size,
		   tick_value = EXCLUDED.tick_value,
		   point_value_override = EXCLUDED.point_value_override,
		   pip_size = EXCLUDED.pip_size,
		   pip_value = EXCLUDED.pip_value,
		   example = EXCLUDED.example,
		   updated_at = EXCLUDED.updated_at`,
		p.Symbol, p.Description, string(p.Spec.Kind),
		p.Spec.TickSize.String(), p.Spec.TickValue.String(), p.Spec.PointValueOverride.String(),
		p.Spec.PipSize.String(), p.Spec.PipValue.String(),
		example, p.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) GetPreset(ctx context.Context, symbol string) (*model.Preset, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT symbol, description, kind,
		        tick_size::TEXT, tick_value::TEXT, point_value_override::TEXT,
		        pip_size::TEXT, pip_value::TEXT,
		        example, updated_at
		 FROM presets WHERE symbol = $1`, symbol)

	p, err := scanPreset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPresetNotFound
		}
		return nil, fmt.Errorf("get preset %s: %w", symbol, err)
	}
	return p, nil
}

func (s *PostgresStore) ListPresets(ctx context.Context) ([]model.Preset, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT symbol, description, kind,
		        tick_size::TEXT, tick_value::TEXT, point_value_override::TEXT,
		        pip_size::TEXT, pip_value::TEXT,
		        example, updated_at
		 FROM presets ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []model.Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, *p)
	}
	return presets, rows.Err()
}

// scanner is the scan surface shared by pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPreset(row scanner) (*model.Preset, error) {
	var p model.Preset
	var kind string
	var tickSize, tickValue, pointOverride, pipSize, pipValue string
	var example []byte

	if err := row.Scan(&p.Symbol, &p.Description, &kind,
		&tickSize, &tickValue, &pointOverride,
		&pipSize, &pipValue,
		&example, &p.UpdatedAt); err != nil {
		return nil, err
	}

	p.Spec.Kind = instrument.Kind(kind)
	p.Spec.TickSize, _ = decimal.NewFromString(tickSize)
	p.Spec.TickValue, _ = decimal.NewFromString(tickValue)
	p.Spec.PointValueOverride, _ = decimal.NewFromString(pointOverride)
	p.Spec.PipSize, _ = decimal.NewFromString(pipSize)
	p.Spec.PipValue, _ = decimal.NewFromString(pipValue)

	if len(example) > 0 {
		if err := json.Unmarshal(example, &p.Example); err != nil {
			return nil, fmt.Errorf("unmarshal example values: %w", err)
		}
	}
	return &p, nil
}
