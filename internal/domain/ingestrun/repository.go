package ingestrun

import "context"

type Repository interface {
	Upsert(ctx context.Context, run Run) error
	GetByID(ctx context.Context, runID string) (Run, bool, error)
}
