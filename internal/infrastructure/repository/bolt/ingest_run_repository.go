package bolt

import (
	"context"
	"fmt"

	"github.com/riskibarqy/floorball-league/internal/domain/ingestrun"
	bolt "go.etcd.io/bbolt"
)

type IngestRunRepository struct {
	store *Store
}

func NewIngestRunRepository(store *Store) *IngestRunRepository {
	return &IngestRunRepository{store: store}
}

func (r *IngestRunRepository) Upsert(ctx context.Context, run ingestrun.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.store.db.Update(func(tx *bolt.Tx) error {
		if run.TraceID == "" {
			var existing ingestrun.Run
			if found, err := get(tx, bucketIngestRuns, []byte(run.RunID), &existing); err != nil {
				return err
			} else if found {
				run.TraceID = existing.TraceID
			}
		}
		return put(tx, bucketIngestRuns, []byte(run.RunID), run)
	})
	if err != nil {
		return fmt.Errorf("upsert ingestion run id=%s: %w", run.RunID, err)
	}
	return nil
}

func (r *IngestRunRepository) GetByID(ctx context.Context, runID string) (ingestrun.Run, bool, error) {
	if err := ctx.Err(); err != nil {
		return ingestrun.Run{}, false, err
	}

	var (
		out   ingestrun.Run
		found bool
	)
	err := r.store.db.View(func(tx *bolt.Tx) error {
		var err error
		found, err = get(tx, bucketIngestRuns, []byte(runID), &out)
		return err
	})
	if err != nil {
		return ingestrun.Run{}, false, fmt.Errorf("get ingestion run id=%s: %w", runID, err)
	}
	return out, found, nil
}
