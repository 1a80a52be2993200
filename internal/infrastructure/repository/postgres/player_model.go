package postgres

import "github.com/riskibarqy/floorball-league/internal/domain/player"

type playerTableModel struct {
	PlayerID     string `db:"player_id"`
	Name         string `db:"name"`
	JerseyNumber string `db:"jersey_number"`
	Team         string `db:"team"`
	Goals        int    `db:"goals"`
	Assists      int    `db:"assists"`
}

func (m playerTableModel) toDomain() player.Player {
	return player.Player{
		ID:           m.PlayerID,
		Name:         m.Name,
		JerseyNumber: m.JerseyNumber,
		Team:         m.Team,
		Goals:        m.Goals,
		Assists:      m.Assists,
	}
}
