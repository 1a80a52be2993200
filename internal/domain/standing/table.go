package standing

import (
	"sort"

	"github.com/riskibarqy/floorball-league/internal/domain/game"
)

const (
	pointsWin  = 3
	pointsDraw = 1
)

// BuildTable folds game results into a ranked table.
//
// Games without two numeric scores are skipped and register no team. Rows keep
// discovery order until the stable sort: points, goal difference, goals for.
func BuildTable(games []game.Game) Table {
	table := Table{Teams: []TeamStanding{}}
	if len(games) == 0 {
		return table
	}

	latest := games[0]
	for _, g := range games[1:] {
		if g.UpdatedAt != "" && g.UpdatedAt > latest.UpdatedAt {
			latest = g
		}
	}
	table.LeagueID = latest.LeagueID
	table.LeagueName = latest.LeagueName
	table.UpdatedAt = latest.UpdatedAt

	index := make(map[int64]int, 16)
	rows := make([]TeamStanding, 0, 16)
	register := func(teamID int64, name string) int {
		if i, ok := index[teamID]; ok {
			return i
		}
		index[teamID] = len(rows)
		rows = append(rows, TeamStanding{TeamID: teamID, TeamName: name})
		return len(rows) - 1
	}

	for _, g := range games {
		homeScore, awayScore, ok := g.Scores()
		if !ok {
			continue
		}

		homeIdx := register(g.HomeTeamID, g.HomeTeamClubName)
		awayIdx := register(g.AwayTeamID, g.AwayTeamClubName)
		home, away := &rows[homeIdx], &rows[awayIdx]

		home.GamesPlayed++
		away.GamesPlayed++
		home.GoalsFor += homeScore
		home.GoalsAgainst += awayScore
		away.GoalsFor += awayScore
		away.GoalsAgainst += homeScore

		switch {
		case homeScore > awayScore:
			home.Wins++
			home.Points += pointsWin
			away.Losses++
		case awayScore > homeScore:
			away.Wins++
			away.Points += pointsWin
			home.Losses++
		default:
			home.Draws++
			away.Draws++
			home.Points += pointsDraw
			away.Points += pointsDraw
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if gi, gj := rows[i].GoalDifference(), rows[j].GoalDifference(); gi != gj {
			return gi > gj
		}
		return rows[i].GoalsFor > rows[j].GoalsFor
	})

	table.Teams = rows
	return table
}
