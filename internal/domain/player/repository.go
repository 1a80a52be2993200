package player

import "context"

type Repository interface {
	List(ctx context.Context) ([]Player, error)
	ListTopByGoals(ctx context.Context, limit int) ([]Player, error)
	Upsert(ctx context.Context, item Player) error
}
