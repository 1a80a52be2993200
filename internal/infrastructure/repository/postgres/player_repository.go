package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/floorball-league/internal/domain/player"
	qb "github.com/riskibarqy/floorball-league/internal/platform/querybuilder"
)

var playerColumns = []string{"player_id", "name", "jersey_number", "team", "goals", "assists"}

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	return r.list(ctx, 0)
}

func (r *PlayerRepository) ListTopByGoals(ctx context.Context, limit int) ([]player.Player, error) {
	if limit <= 0 {
		return []player.Player{}, nil
	}
	return r.list(ctx, limit)
}

func (r *PlayerRepository) list(ctx context.Context, limit int) ([]player.Player, error) {
	query, args, err := qb.Select(playerColumns...).From("players").
		OrderBy("goals DESC", "player_id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Upsert replaces the stored counters with the totals of the current run.
func (r *PlayerRepository) Upsert(ctx context.Context, item player.Player) error {
	model := playerTableModel{
		PlayerID:     item.ID,
		Name:         item.Name,
		JerseyNumber: item.JerseyNumber,
		Team:         item.Team,
		Goals:        item.Goals,
		Assists:      item.Assists,
	}
	query, args, err := qb.InsertModel("players", model,
		qb.OnConflict("player_id").
			DoUpdate("name", "jersey_number", "team", "goals", "assists").
			Set("updated_at", "NOW()"),
	)
	if err != nil {
		return fmt.Errorf("build upsert player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert player id=%s: %w", item.ID, err)
	}
	return nil
}
