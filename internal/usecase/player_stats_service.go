package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/floorball-league/internal/domain/game"
	"github.com/riskibarqy/floorball-league/internal/domain/player"
	"github.com/riskibarqy/floorball-league/internal/platform/logging"
)

type PlayerStatsConfig struct {
	// Workers caps concurrent upserts. Zero or less means one worker per player.
	Workers int
	Logger  *logging.Logger
}

type PlayerStatsResult struct {
	Games       int
	FailedGames int
	Players     int
	Saved       int
	Errors      int
}

type PlayerStatsService struct {
	games    game.Repository
	players  player.Repository
	timeline TimelineSource
	cfg      PlayerStatsConfig
}

func NewPlayerStatsService(games game.Repository, players player.Repository, source TimelineSource, cfg PlayerStatsConfig) *PlayerStatsService {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &PlayerStatsService{
		games:    games,
		players:  players,
		timeline: source,
		cfg:      cfg,
	}
}

// Run rebuilds player totals from the timelines of every stored game and
// upserts them. Totals replace whatever was stored, so reruns are idempotent.
func (s *PlayerStatsService) Run(ctx context.Context) (PlayerStatsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerStatsService.Run")
	defer span.End()

	games, err := s.games.List(ctx)
	if err != nil {
		return PlayerStatsResult{}, fmt.Errorf("list games: %w", err)
	}

	result := PlayerStatsResult{Games: len(games)}
	agg := NewPlayerAggregator()
	for _, g := range games {
		events, err := s.timeline.FetchTimeline(ctx, g.GameID)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.FailedGames++
			s.cfg.Logger.WarnContext(ctx, "fetch game timeline failed, skipping game", "game_id", g.GameID, "error", err)
			continue
		}
		agg.Add(g, events)
	}

	items := agg.Players()
	result.Players = len(items)
	if len(items) == 0 {
		return result, nil
	}

	saved, failed, err := s.upsertAll(ctx, items)
	result.Saved = saved
	result.Errors = failed
	if err != nil {
		return result, err
	}

	s.cfg.Logger.InfoContext(ctx, "player stats ingestion finished",
		"games", result.Games,
		"failed_games", result.FailedGames,
		"players", result.Players,
		"saved", result.Saved,
		"errors", result.Errors,
	)
	return result, nil
}

func (s *PlayerStatsService) upsertAll(ctx context.Context, items []player.Player) (int, int, error) {
	workers := s.cfg.Workers
	if workers <= 0 || workers > len(items) {
		workers = len(items)
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return 0, 0, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var saved atomic.Int32
	var failed atomic.Int32
	var wg sync.WaitGroup
	for _, item := range items {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if err := s.players.Upsert(ctx, item); err != nil {
				failed.Add(1)
				s.cfg.Logger.ErrorContext(ctx, "upsert player failed", "player_id", item.ID, "error", err)
				return
			}
			saved.Add(1)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return int(saved.Load()), int(failed.Load()), fmt.Errorf("submit player upsert: %w", err)
		}
	}
	wg.Wait()

	return int(saved.Load()), int(failed.Load()), nil
}
