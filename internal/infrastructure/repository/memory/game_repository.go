package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/floorball-league/internal/domain/game"
)

type GameRepository struct {
	mu    sync.RWMutex
	games map[int64]game.Game
}

func NewGameRepository(seed ...game.Game) *GameRepository {
	games := make(map[int64]game.Game, len(seed))
	for _, g := range seed {
		games[g.GameID] = g
	}
	return &GameRepository{games: games}
}

func (r *GameRepository) List(_ context.Context) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted(func(game.Game) bool { return true }), nil
}

func (r *GameRepository) ListByLeague(_ context.Context, leagueID int64) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted(func(g game.Game) bool { return g.LeagueID == leagueID }), nil
}

func (r *GameRepository) GetByID(_ context.Context, gameID int64) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.games[gameID]
	return g, ok, nil
}

func (r *GameRepository) Upsert(_ context.Context, item game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.games[item.GameID] = item
	return nil
}

func (r *GameRepository) sorted(keep func(game.Game) bool) []game.Game {
	out := make([]game.Game, 0, len(r.games))
	for _, g := range r.games {
		if keep(g) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameID < out[j].GameID })
	return out
}
