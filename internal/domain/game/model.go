package game

import (
	"strconv"
	"strings"
)

// Game is one league game as served by the upstream games endpoint.
// GameID is the dedup key across pages and across ingestion runs.
type Game struct {
	GameID            int64  `json:"GameID" validate:"gt=0"`
	GameStatusID      int64  `json:"GameStatusID"`
	LeagueID          int64  `json:"LeagueID" validate:"gt=0"`
	LeagueName        string `json:"LeagueName" validate:"required"`
	GameRound         int64  `json:"GameRound"`
	LeagueDisplayName string `json:"LeagueDisplayName" validate:"required"`
	HomeTeamID        int64  `json:"HomeTeamID" validate:"gt=0"`
	AwayTeamID        int64  `json:"AwayTeamID" validate:"gt=0"`
	HomeTeamClubName  string `json:"HomeTeamClubName" validate:"required"`
	AwayTeamClubName  string `json:"AwayTeamClubName" validate:"required"`
	HomeTeamScore     string `json:"HomeTeamScore"`
	AwayTeamScore     string `json:"AwayTeamScore"`
	GameTime          string `json:"GameTime"`
	ArenaName         string `json:"ArenaName"`
	UpdatedAt         string `json:"UpdatedAt"`
}

// Scores returns both scores when the game has concluded with numeric results.
func (g Game) Scores() (home, away int, ok bool) {
	home, err := strconv.Atoi(strings.TrimSpace(g.HomeTeamScore))
	if err != nil {
		return 0, 0, false
	}
	away, err = strconv.Atoi(strings.TrimSpace(g.AwayTeamScore))
	if err != nil {
		return 0, 0, false
	}
	return home, away, true
}
