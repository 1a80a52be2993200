package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/floorball-league/internal/platform/logging"
	"github.com/riskibarqy/floorball-league/internal/usecase"
)

type Handler struct {
	gameService     *usecase.GameService
	standingService *usecase.StandingService
	playerService   *usecase.PlayerService
	ingestRuns      *usecase.IngestRunService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	gameService *usecase.GameService,
	standingService *usecase.StandingService,
	playerService *usecase.PlayerService,
	ingestRuns *usecase.IngestRunService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		gameService:     gameService,
		standingService: standingService,
		playerService:   playerService,
		ingestRuns:      ingestRuns,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseInt64Param(raw string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
