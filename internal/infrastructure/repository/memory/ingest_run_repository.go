package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/floorball-league/internal/domain/ingestrun"
)

type IngestRunRepository struct {
	mu   sync.RWMutex
	runs map[string]ingestrun.Run
}

func NewIngestRunRepository() *IngestRunRepository {
	return &IngestRunRepository{runs: make(map[string]ingestrun.Run)}
}

func (r *IngestRunRepository) Upsert(_ context.Context, run ingestrun.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.runs[run.RunID]; ok && run.TraceID == "" {
		run.TraceID = existing.TraceID
	}
	r.runs[run.RunID] = run
	return nil
}

func (r *IngestRunRepository) GetByID(_ context.Context, runID string) (ingestrun.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[runID]
	return run, ok, nil
}
