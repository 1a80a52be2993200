package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/floorball-league/internal/domain/player"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	players map[string]player.Player
}

func NewPlayerRepository(seed ...player.Player) *PlayerRepository {
	players := make(map[string]player.Player, len(seed))
	for _, p := range seed {
		players[p.ID] = p
	}
	return &PlayerRepository{players: players}
}

func (r *PlayerRepository) List(_ context.Context) ([]player.Player, error) {
	return r.snapshot(0), nil
}

func (r *PlayerRepository) ListTopByGoals(_ context.Context, limit int) ([]player.Player, error) {
	return r.snapshot(limit), nil
}

func (r *PlayerRepository) Upsert(_ context.Context, item player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.players[item.ID] = item
	return nil
}

func (r *PlayerRepository) snapshot(limit int) []player.Player {
	r.mu.RLock()
	out := make([]player.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	r.mu.RUnlock()

	player.SortByGoals(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
