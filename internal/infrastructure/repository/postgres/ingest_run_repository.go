package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/floorball-league/internal/domain/ingestrun"
	qb "github.com/riskibarqy/floorball-league/internal/platform/querybuilder"
)

type IngestRunRepository struct {
	db *sqlx.DB
}

func NewIngestRunRepository(db *sqlx.DB) *IngestRunRepository {
	return &IngestRunRepository{db: db}
}

func (r *IngestRunRepository) Upsert(ctx context.Context, run ingestrun.Run) error {
	if strings.TrimSpace(run.RunID) == "" {
		return fmt.Errorf("run id is required")
	}

	query, args, err := qb.InsertModel("ingestion_runs", ingestRunModelFromDomain(run),
		qb.OnConflict("run_id").
			DoUpdate("status", "fetched", "saved", "errors", "stop_reason", "error_message", "finished_at").
			Set("trace_id", "COALESCE(EXCLUDED.trace_id, ingestion_runs.trace_id)"),
	)
	if err != nil {
		return fmt.Errorf("build upsert ingestion run query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert ingestion run id=%s: %w", run.RunID, err)
	}
	return nil
}

func (r *IngestRunRepository) GetByID(ctx context.Context, runID string) (ingestrun.Run, bool, error) {
	query, args, err := qb.Select(
		"run_id", "kind", "status", "fetched", "saved", "errors",
		"stop_reason", "error_message", "trace_id", "started_at", "finished_at",
	).From("ingestion_runs").
		Where(qb.Eq("run_id", runID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return ingestrun.Run{}, false, fmt.Errorf("build select ingestion run query: %w", err)
	}

	var row ingestRunTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return ingestrun.Run{}, false, nil
		}
		return ingestrun.Run{}, false, fmt.Errorf("get ingestion run: %w", err)
	}
	return row.toDomain(), true, nil
}
