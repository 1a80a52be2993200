package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/floorball-league/internal/domain/rawdata"
)

// RawDataRepository keeps the latest payload per key. Used when no durable
// store is configured and in tests.
type RawDataRepository struct {
	mu       sync.RWMutex
	payloads map[string]rawdata.Payload
}

func NewRawDataRepository() *RawDataRepository {
	return &RawDataRepository{payloads: make(map[string]rawdata.Payload)}
}

func (r *RawDataRepository) UpsertMany(_ context.Context, items []rawdata.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		r.payloads[item.Key()] = item
	}
	return nil
}

func (r *RawDataRepository) Get(key string) (rawdata.Payload, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payloads[key]
	return p, ok
}

func (r *RawDataRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.payloads)
}
