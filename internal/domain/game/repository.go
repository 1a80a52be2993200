package game

import "context"

type Repository interface {
	List(ctx context.Context) ([]Game, error)
	ListByLeague(ctx context.Context, leagueID int64) ([]Game, error)
	GetByID(ctx context.Context, gameID int64) (Game, bool, error)
	Upsert(ctx context.Context, item Game) error
}
