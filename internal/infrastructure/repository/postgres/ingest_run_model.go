package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/floorball-league/internal/domain/ingestrun"
)

type ingestRunTableModel struct {
	RunID        string         `db:"run_id"`
	Kind         string         `db:"kind"`
	Status       string         `db:"status"`
	Fetched      int            `db:"fetched"`
	Saved        int            `db:"saved"`
	Errors       int            `db:"errors"`
	StopReason   sql.NullString `db:"stop_reason"`
	ErrorMessage sql.NullString `db:"error_message"`
	TraceID      sql.NullString `db:"trace_id"`
	StartedAt    time.Time      `db:"started_at"`
	FinishedAt   *time.Time     `db:"finished_at"`
}

func ingestRunModelFromDomain(run ingestrun.Run) ingestRunTableModel {
	return ingestRunTableModel{
		RunID:        run.RunID,
		Kind:         string(run.Kind),
		Status:       string(run.Status),
		Fetched:      run.Fetched,
		Saved:        run.Saved,
		Errors:       run.Errors,
		StopReason:   nullString(run.StopReason),
		ErrorMessage: nullString(run.ErrorMessage),
		TraceID:      nullString(run.TraceID),
		StartedAt:    run.StartedAt.UTC(),
		FinishedAt:   run.FinishedAt,
	}
}

func (m ingestRunTableModel) toDomain() ingestrun.Run {
	return ingestrun.Run{
		RunID:        m.RunID,
		Kind:         ingestrun.Kind(m.Kind),
		Status:       ingestrun.Status(m.Status),
		Fetched:      m.Fetched,
		Saved:        m.Saved,
		Errors:       m.Errors,
		StopReason:   m.StopReason.String,
		ErrorMessage: m.ErrorMessage.String,
		TraceID:      m.TraceID.String,
		StartedAt:    m.StartedAt.UTC(),
		FinishedAt:   m.FinishedAt,
	}
}
