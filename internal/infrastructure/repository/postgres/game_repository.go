package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/floorball-league/internal/domain/game"
	qb "github.com/riskibarqy/floorball-league/internal/platform/querybuilder"
)

type GameRepository struct {
	db      *sqlx.DB
	columns []string
	upsert  *qb.Conflict
}

func NewGameRepository(db *sqlx.DB) (*GameRepository, error) {
	columns, err := qb.Columns(gameTableModel{})
	if err != nil {
		return nil, fmt.Errorf("resolve game columns: %w", err)
	}
	updatable, err := qb.Columns(gameTableModel{}, "game_id")
	if err != nil {
		return nil, fmt.Errorf("resolve game columns: %w", err)
	}
	return &GameRepository{
		db:      db,
		columns: columns,
		upsert:  qb.OnConflict("game_id").DoUpdate(updatable...),
	}, nil
}

func (r *GameRepository) List(ctx context.Context) ([]game.Game, error) {
	query, args, err := qb.Select(r.columns...).From("games").
		OrderBy("game_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games query: %w", err)
	}
	return r.selectGames(ctx, query, args)
}

func (r *GameRepository) ListByLeague(ctx context.Context, leagueID int64) ([]game.Game, error) {
	query, args, err := qb.Select(r.columns...).From("games").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("game_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games by league query: %w", err)
	}
	return r.selectGames(ctx, query, args)
}

func (r *GameRepository) GetByID(ctx context.Context, gameID int64) (game.Game, bool, error) {
	query, args, err := qb.Select(r.columns...).From("games").
		Where(qb.Eq("game_id", gameID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build select game by id query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game by id: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *GameRepository) Upsert(ctx context.Context, item game.Game) error {
	query, args, err := qb.InsertModel("games", gameModelFromDomain(item), r.upsert)
	if err != nil {
		return fmt.Errorf("build upsert game query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert game id=%d: %w", item.GameID, err)
	}
	return nil
}

func (r *GameRepository) selectGames(ctx context.Context, query string, args []any) ([]game.Game, error) {
	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
