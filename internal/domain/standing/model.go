package standing

// TeamStanding is one table row. It is derived on every request, never stored.
type TeamStanding struct {
	TeamID       int64  `json:"TeamID"`
	TeamName     string `json:"TeamName"`
	GamesPlayed  int    `json:"GamesPlayed"`
	Wins         int    `json:"Wins"`
	Draws        int    `json:"Draws"`
	Losses       int    `json:"Losses"`
	GoalsFor     int    `json:"GoalsFor"`
	GoalsAgainst int    `json:"GoalsAgainst"`
	Points       int    `json:"Points"`
}

func (s TeamStanding) GoalDifference() int {
	return s.GoalsFor - s.GoalsAgainst
}

// Table is the ranked league table. UpdatedAt is the newest game UpdatedAt
// and LeagueID/LeagueName come from that same game.
type Table struct {
	LeagueID   int64          `json:"LeagueID"`
	LeagueName string         `json:"LeagueName"`
	UpdatedAt  string         `json:"UpdatedAt"`
	Teams      []TeamStanding `json:"Teams"`
}
