package bolt

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/floorball-league/internal/domain/player"
	bolt "go.etcd.io/bbolt"
)

type PlayerRepository struct {
	store *Store
}

func NewPlayerRepository(store *Store) *PlayerRepository {
	return &PlayerRepository{store: store}
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	return r.list(ctx, 0)
}

func (r *PlayerRepository) ListTopByGoals(ctx context.Context, limit int) ([]player.Player, error) {
	return r.list(ctx, limit)
}

func (r *PlayerRepository) Upsert(ctx context.Context, item player.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.store.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucketPlayers, []byte(item.ID), item)
	})
	if err != nil {
		return fmt.Errorf("upsert player id=%s: %w", item.ID, err)
	}
	return nil
}

// list loads every player; the bucket is small enough to sort in memory.
func (r *PlayerRepository) list(ctx context.Context, limit int) ([]player.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]player.Player, 0)
	err := r.store.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketPlayers)).ForEach(func(_, v []byte) error {
			var p player.Player
			if err := sonic.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("unmarshal player: %w", err)
			}
			out = append(out, p)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	player.SortByGoals(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
