package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/riskibarqy/floorball-league/internal/usecase"
)

type topScorersParams struct {
	Limit int `validate:"min=1,max=500"`
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	players, err := h.playerService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, players)
}

func (h *Handler) ListTopScorers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTopScorers")
	defer span.End()

	raw := r.PathValue("n")
	limit, err := strconv.Atoi(raw)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: n must be numeric, got %q", usecase.ErrInvalidInput, raw))
		return
	}
	if err := h.validator.StructCtx(ctx, topScorersParams{Limit: limit}); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: n must be between 1 and %d", usecase.ErrInvalidInput, usecase.MaxTopScorers))
		return
	}

	players, err := h.playerService.TopByGoals(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list top scorers failed", "limit", limit, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, players)
}
