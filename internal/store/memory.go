package store

import (
	"context"
	"sort"
	"sync"

	"github.com/tradecalc/calc-engine/internal/model"
)

// MemoryStore implements Store with an in-memory map. Used for testing
// and for running without a database (presets will not persist).
type MemoryStore struct {
	mu      sync.RWMutex
	presets map[string]*model.Preset
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		presets: make(map[string]*model.Preset),
	}
}

func (s *MemoryStore) UpsertPreset(_ context.Context, p *model.Preset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to avoid external mutation.
	cp := *p
	s.presets[p.Symbol] = &cp
	return nil
}

func (s *MemoryStore) GetPreset(_ context.Context, symbol string) (*model.Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.presets[symbol]
	if !ok {
		return nil, ErrPresetNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) ListPresets(_ context.Context) ([]model.Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	presets := make([]model.Preset, 0, len(s.presets))
	for _, p := range s.presets {
		presets = append(presets, *p)
	}
	sort.Slice(presets, func(i, j int) bool {
		return presets[i].Symbol < presets[j].Symbol
	})
	return presets, nil
}
