package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tradecalc/calc-engine/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Writes go to the primary store and invalidate the cache; reads
// check Redis first then fall back to the primary. The cache is advisory:
// any Redis failure falls through to the primary.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

func (s *CachedStore) UpsertPreset(ctx context.Context, p *model.Preset) error {
	if err := s.primary.UpsertPreset(ctx, p); err != nil {
		return err
	}
	// Invalidate; next read re-populates.
	s.rdb.Del(ctx, presetKey(p.Symbol), presetListKey())
	return nil
}

func (s *CachedStore) GetPreset(ctx context.Context, symbol string) (*model.Preset, error) {
	data, err := s.rdb.Get(ctx, presetKey(symbol)).Bytes()
	if err == nil {
		var p model.Preset
		if json.Unmarshal(data, &p) == nil {
			return &p, nil
		}
	}

	p, err := s.primary.GetPreset(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		s.rdb.Set(ctx, presetKey(symbol), data, s.ttl)
	}
	return p, nil
}

func (s *CachedStore) ListPresets(ctx context.Context) ([]model.Preset, error) {
	data, err := s.rdb.Get(ctx, presetListKey()).Bytes()
	if err == nil {
		var presets []model.Preset
		if json.Unmarshal(data, &presets) == nil {
			return presets, nil
		}
	}

	presets, err := s.primary.ListPresets(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(presets); err == nil {
		s.rdb.Set(ctx, presetListKey(), data, s.ttl)
	}
	return presets, nil
}

func presetKey(symbol string) string { return fmt.Sprintf("preset:%s", symbol) }
func presetListKey() string          { return "presets:all" }
