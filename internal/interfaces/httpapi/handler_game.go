package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/floorball-league/internal/usecase"
)

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	games, err := h.gameService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list games failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, games)
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGame")
	defer span.End()

	raw := r.PathValue("id")
	gameID, ok := parseInt64Param(raw)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: game id must be numeric, got %q", usecase.ErrInvalidInput, raw))
		return
	}

	item, err := h.gameService.GetByID(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "get game failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTable")
	defer span.End()

	var leagueID int64
	if raw := strings.TrimSpace(r.URL.Query().Get("leagueId")); raw != "" {
		parsed, ok := parseInt64Param(raw)
		if !ok {
			writeError(ctx, w, fmt.Errorf("%w: leagueId must be numeric, got %q", usecase.ErrInvalidInput, raw))
			return
		}
		leagueID = parsed
	}

	table, err := h.standingService.GetTable(ctx, leagueID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get table failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, table)
}
