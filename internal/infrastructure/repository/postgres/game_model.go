package postgres

import "github.com/riskibarqy/floorball-league/internal/domain/game"

type gameTableModel struct {
	GameID            int64  `db:"game_id"`
	GameStatusID      int64  `db:"game_status_id"`
	LeagueID          int64  `db:"league_id"`
	LeagueName        string `db:"league_name"`
	GameRound         int64  `db:"game_round"`
	LeagueDisplayName string `db:"league_display_name"`
	HomeTeamID        int64  `db:"home_team_id"`
	AwayTeamID        int64  `db:"away_team_id"`
	HomeTeamClubName  string `db:"home_team_club_name"`
	AwayTeamClubName  string `db:"away_team_club_name"`
	HomeTeamScore     string `db:"home_team_score"`
	AwayTeamScore     string `db:"away_team_score"`
	GameTime          string `db:"game_time"`
	ArenaName         string `db:"arena_name"`
	UpdatedAt         string `db:"updated_at"`
}

func gameModelFromDomain(g game.Game) gameTableModel {
	return gameTableModel(g)
}

func (m gameTableModel) toDomain() game.Game {
	return game.Game(m)
}
