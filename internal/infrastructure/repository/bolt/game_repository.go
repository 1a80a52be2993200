package bolt

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/floorball-league/internal/domain/game"
	bolt "go.etcd.io/bbolt"
)

type GameRepository struct {
	store *Store
}

func NewGameRepository(store *Store) *GameRepository {
	return &GameRepository{store: store}
}

func (r *GameRepository) List(ctx context.Context) ([]game.Game, error) {
	return r.scan(ctx, func(game.Game) bool { return true })
}

func (r *GameRepository) ListByLeague(ctx context.Context, leagueID int64) ([]game.Game, error) {
	return r.scan(ctx, func(g game.Game) bool { return g.LeagueID == leagueID })
}

func (r *GameRepository) GetByID(ctx context.Context, gameID int64) (game.Game, bool, error) {
	if err := ctx.Err(); err != nil {
		return game.Game{}, false, err
	}

	var (
		out   game.Game
		found bool
	)
	err := r.store.db.View(func(tx *bolt.Tx) error {
		var err error
		found, err = get(tx, bucketGames, int64Key(gameID), &out)
		return err
	})
	if err != nil {
		return game.Game{}, false, fmt.Errorf("get game id=%d: %w", gameID, err)
	}
	return out, found, nil
}

func (r *GameRepository) Upsert(ctx context.Context, item game.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.store.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucketGames, int64Key(item.GameID), item)
	})
	if err != nil {
		return fmt.Errorf("upsert game id=%d: %w", item.GameID, err)
	}
	return nil
}

func (r *GameRepository) scan(ctx context.Context, keep func(game.Game) bool) ([]game.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]game.Game, 0)
	err := r.store.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketGames)).ForEach(func(_, v []byte) error {
			var g game.Game
			if err := sonic.Unmarshal(v, &g); err != nil {
				return fmt.Errorf("unmarshal game: %w", err)
			}
			if keep(g) {
				out = append(out, g)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return out, nil
}
