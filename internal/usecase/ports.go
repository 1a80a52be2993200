package usecase

import (
	"context"

	"github.com/riskibarqy/floorball-league/internal/domain/game"
	"github.com/riskibarqy/floorball-league/internal/domain/ingestrun"
	"github.com/riskibarqy/floorball-league/internal/domain/timeline"
)

// GameSource serves one page of league games after a cursor game id.
type GameSource interface {
	FetchGamesPage(ctx context.Context, leagueID, lastGameID int64) ([]game.Game, error)
}

// TimelineSource serves the retained timeline events of one game.
type TimelineSource interface {
	FetchTimeline(ctx context.Context, gameID int64) ([]timeline.Event, error)
}

// CacheInvalidator drops read caches made stale by a finished ingestion run.
type CacheInvalidator interface {
	InvalidateKind(ctx context.Context, kind ingestrun.Kind) error
}
