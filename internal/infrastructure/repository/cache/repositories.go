package cache

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/riskibarqy/floorball-league/internal/domain/game"
	"github.com/riskibarqy/floorball-league/internal/domain/ingestrun"
	"github.com/riskibarqy/floorball-league/internal/domain/player"
	basecache "github.com/riskibarqy/floorball-league/internal/platform/cache"
)

const (
	gamesPrefix   = "games:"
	playersPrefix = "players:"
)

// cachedList hands every caller its own copy. The in-process store shares one
// slice between hits, so callers may sort or trim what they get back.
func cachedList[T any](ctx context.Context, c basecache.Cache, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	items, err := basecache.GetOrLoadAs(ctx, c, key, load)
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

// GameRepository reads through the cache. Writes pass straight to next;
// ingestion runs drop the games prefix once they finish through Invalidator.
type GameRepository struct {
	next  game.Repository
	cache basecache.Cache
}

func NewGameRepository(next game.Repository, cache basecache.Cache) *GameRepository {
	return &GameRepository{next: next, cache: cache}
}

func (r *GameRepository) List(ctx context.Context) ([]game.Game, error) {
	return cachedList(ctx, r.cache, gamesPrefix+"list", r.next.List)
}

func (r *GameRepository) ListByLeague(ctx context.Context, leagueID int64) ([]game.Game, error) {
	key := gamesPrefix + "league:" + strconv.FormatInt(leagueID, 10)
	return cachedList(ctx, r.cache, key, func(ctx context.Context) ([]game.Game, error) {
		return r.next.ListByLeague(ctx, leagueID)
	})
}

func (r *GameRepository) GetByID(ctx context.Context, gameID int64) (game.Game, bool, error) {
	key := gamesPrefix + "id:" + strconv.FormatInt(gameID, 10)
	cached, err := basecache.GetOrLoadAs(ctx, r.cache, key, func(ctx context.Context) (cachedGameByID, error) {
		item, exists, err := r.next.GetByID(ctx, gameID)
		if err != nil {
			return cachedGameByID{}, err
		}
		return cachedGameByID{Value: item, Exists: exists}, nil
	})
	if err != nil {
		return game.Game{}, false, err
	}
	return cached.Value, cached.Exists, nil
}

func (r *GameRepository) Upsert(ctx context.Context, item game.Game) error {
	return r.next.Upsert(ctx, item)
}

type cachedGameByID struct {
	Value  game.Game `json:"value"`
	Exists bool      `json:"exists"`
}

type PlayerRepository struct {
	next  player.Repository
	cache basecache.Cache
}

func NewPlayerRepository(next player.Repository, cache basecache.Cache) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	return cachedList(ctx, r.cache, playersPrefix+"list", r.next.List)
}

func (r *PlayerRepository) ListTopByGoals(ctx context.Context, limit int) ([]player.Player, error) {
	key := playersPrefix + "top:" + strconv.Itoa(limit)
	return cachedList(ctx, r.cache, key, func(ctx context.Context) ([]player.Player, error) {
		return r.next.ListTopByGoals(ctx, limit)
	})
}

func (r *PlayerRepository) Upsert(ctx context.Context, item player.Player) error {
	return r.next.Upsert(ctx, item)
}

// Invalidator drops every cached read of the kind a run just rewrote.
type Invalidator struct {
	cache basecache.Cache
}

func NewInvalidator(cache basecache.Cache) *Invalidator {
	return &Invalidator{cache: cache}
}

func (i *Invalidator) InvalidateKind(ctx context.Context, kind ingestrun.Kind) error {
	var prefix string
	switch kind {
	case ingestrun.KindGames:
		prefix = gamesPrefix
	case ingestrun.KindPlayers:
		prefix = playersPrefix
	default:
		return fmt.Errorf("unknown ingestion kind %q", kind)
	}
	if err := i.cache.DeletePrefix(ctx, prefix); err != nil {
		return fmt.Errorf("invalidate %s cache: %w", kind, err)
	}
	return nil
}
