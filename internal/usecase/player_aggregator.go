package usecase

import (
	"github.com/riskibarqy/floorball-league/internal/domain/game"
	"github.com/riskibarqy/floorball-league/internal/domain/player"
	"github.com/riskibarqy/floorball-league/internal/domain/timeline"
)

// PlayerAggregator folds goal events into per-player totals. Players come
// out in the order they were first seen.
type PlayerAggregator struct {
	index map[string]int
	items []player.Player
}

func NewPlayerAggregator() *PlayerAggregator {
	return &PlayerAggregator{index: make(map[string]int)}
}

func (a *PlayerAggregator) Add(g game.Game, events []timeline.Event) {
	for _, event := range events {
		if !event.IsGoal {
			continue
		}
		team := g.HomeTeamClubName
		if event.IsAwayTeamAction {
			team = g.AwayTeamClubName
		}

		for _, detail := range timeline.ParseDetails(event.DetailsText) {
			if !detail.Attributed() {
				continue
			}
			idx := a.lookup(event.ClubDisplayName, team, detail)
			switch detail.Action {
			case timeline.ActionGoal:
				a.items[idx].Goals++
			case timeline.ActionAssist:
				a.items[idx].Assists++
			}
		}
	}
}

func (a *PlayerAggregator) lookup(club, team string, detail timeline.ActionDetail) int {
	id := player.ComposeID(club, detail.Number, detail.Name)
	if idx, ok := a.index[id]; ok {
		return idx
	}
	a.items = append(a.items, player.Player{
		ID:           id,
		Name:         detail.Name,
		JerseyNumber: detail.Number,
		Team:         team,
	})
	a.index[id] = len(a.items) - 1
	return len(a.items) - 1
}

func (a *PlayerAggregator) Players() []player.Player {
	return append([]player.Player(nil), a.items...)
}

func (a *PlayerAggregator) Len() int {
	return len(a.items)
}
