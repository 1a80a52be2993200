package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/floorball-league/internal/domain/game"
	"github.com/riskibarqy/floorball-league/internal/platform/logging"
	"github.com/riskibarqy/floorball-league/internal/platform/paginate"
)

const (
	gamesProbeStep = 10
	// updatedAtLayout is RFC3339 with millisecond precision, always UTC.
	updatedAtLayout = "2006-01-02T15:04:05.000Z07:00"
)

type GameIngestionConfig struct {
	LeagueID int64
	Limits   paginate.Limits
	Sleep    paginate.Sleeper
	Logger   *logging.Logger
	Now      func() time.Time
}

type GameIngestionInput struct {
	LeagueID   int64
	FromGameID int64
}

type GameIngestionResult struct {
	Fetched int
	Saved   int
	Errors  int
	Pages   int
	Retries int
	Stop    string
}

type GameIngestionService struct {
	source   GameSource
	games    game.Repository
	validate *validator.Validate
	cfg      GameIngestionConfig
}

func NewGameIngestionService(source GameSource, games game.Repository, cfg GameIngestionConfig) *GameIngestionService {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Limits == (paginate.Limits{}) {
		cfg.Limits = paginate.DefaultLimits()
	}
	return &GameIngestionService{
		source:   source,
		games:    games,
		validate: validator.New(),
		cfg:      cfg,
	}
}

// Run pages the games endpoint from the cursor and upserts every valid game.
// Running out of retries ends the run with whatever was collected.
func (s *GameIngestionService) Run(ctx context.Context, input GameIngestionInput) (GameIngestionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameIngestionService.Run")
	defer span.End()

	leagueID := input.LeagueID
	if leagueID <= 0 {
		leagueID = s.cfg.LeagueID
	}
	if leagueID <= 0 {
		return GameIngestionResult{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	logger := s.cfg.Logger.With("league_id", leagueID)
	pager, err := paginate.New(paginate.Config[int64, game.Game, int64]{
		Fetch: func(ctx context.Context, lastGameID int64) ([]game.Game, error) {
			return s.source.FetchGamesPage(ctx, leagueID, lastGameID)
		},
		Identity: func(g game.Game) int64 { return g.GameID },
		Next:     func(last game.Game) int64 { return last.GameID },
		Probe:    func(cursor int64) int64 { return cursor + gamesProbeStep },
		Limits:   s.cfg.Limits,
		Sleep:    s.cfg.Sleep,
		OnTransition: func(tr paginate.Transition[int64]) {
			switch tr.To {
			case paginate.StateBackoff:
				logger.WarnContext(ctx, "games page fetch failed, backing off", "cursor", tr.Cursor, "retries", tr.Retries, "error", tr.Err)
			case paginate.StateProbing:
				logger.InfoContext(ctx, "games page empty, probing ahead", "cursor", tr.Cursor, "empty_responses", tr.EmptyResponses)
			}
		},
	})
	if err != nil {
		return GameIngestionResult{}, fmt.Errorf("build games paginator: %w", err)
	}

	page, err := pager.Run(ctx, input.FromGameID)
	result := GameIngestionResult{
		Fetched: len(page.Items),
		Pages:   page.Pages,
		Retries: page.Retries,
		Stop:    string(page.Stop),
	}
	if err != nil {
		return result, fmt.Errorf("paginate games: %w", err)
	}
	if page.Stop == paginate.StopRetriesExhausted {
		logger.WarnContext(ctx, "games pagination gave up, keeping partial results", "fetched", len(page.Items), "error", page.LastErr)
	}

	updatedAt := s.cfg.Now().UTC().Format(updatedAtLayout)
	for _, item := range page.Items {
		if err := s.validate.Struct(item); err != nil {
			result.Errors++
			logger.WarnContext(ctx, "skip invalid game", "game_id", item.GameID, "error", err)
			continue
		}
		item.UpdatedAt = updatedAt
		if err := s.games.Upsert(ctx, item); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Errors++
			logger.ErrorContext(ctx, "upsert game failed", "game_id", item.GameID, "error", err)
			continue
		}
		result.Saved++
	}

	logger.InfoContext(ctx, "games ingestion finished",
		"fetched", result.Fetched,
		"saved", result.Saved,
		"errors", result.Errors,
		"stop", result.Stop,
	)
	return result, nil
}
