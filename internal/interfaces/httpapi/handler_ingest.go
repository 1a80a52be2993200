package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/floorball-league/internal/domain/ingestrun"
	"github.com/riskibarqy/floorball-league/internal/usecase"
)

type ingestRunAcceptedDTO struct {
	RunID  string           `json:"runId"`
	Kind   ingestrun.Kind   `json:"kind"`
	Status ingestrun.Status `json:"status"`
}

func (h *Handler) StartIngestRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartIngestRun")
	defer span.End()

	if h.ingestRuns == nil {
		writeError(ctx, w, fmt.Errorf("%w: ingestion is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	raw := strings.ToLower(strings.TrimSpace(r.PathValue("kind")))
	kind, ok := ingestrun.ParseKind(raw)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: unknown ingestion kind %q", usecase.ErrInvalidInput, raw))
		return
	}

	run, err := h.ingestRuns.Start(ctx, kind)
	if err != nil {
		h.logger.ErrorContext(ctx, "start ingestion run failed", "kind", kind, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "ingestion run accepted", "run_id", run.RunID, "kind", kind)
	writeSuccess(ctx, w, http.StatusAccepted, ingestRunAcceptedDTO{
		RunID:  run.RunID,
		Kind:   run.Kind,
		Status: run.Status,
	})
}

func (h *Handler) GetIngestRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetIngestRun")
	defer span.End()

	if h.ingestRuns == nil {
		writeError(ctx, w, fmt.Errorf("%w: ingestion is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	runID := strings.TrimSpace(r.PathValue("runID"))
	run, err := h.ingestRuns.Get(ctx, runID)
	if err != nil {
		h.logger.WarnContext(ctx, "get ingestion run failed", "run_id", runID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, run)
}
