package player

import (
	"sort"
	"strings"
)

// Player holds cumulative scoring for one attributed player.
//
// ID is composite: club display name, jersey number and name joined by "-".
// Two players of one club sharing number and spelling collide; upstream does
// not expose a stable player id on timeline events.
type Player struct {
	ID           string `json:"Id"`
	Name         string `json:"Name"`
	JerseyNumber string `json:"JerseyNumber"`
	Team         string `json:"Team"`
	Goals        int    `json:"Goals"`
	Assists      int    `json:"Assists"`
}

func ComposeID(club, number, name string) string {
	return strings.Join([]string{club, number, name}, "-")
}

// SortByGoals orders players by goals descending, then by id for stable output.
func SortByGoals(items []Player) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Goals != items[j].Goals {
			return items[i].Goals > items[j].Goals
		}
		return items[i].ID < items[j].ID
	})
}
