package timeline

type Action string

const (
	ActionGoal   Action = "Goal"
	ActionAssist Action = "Assist"
)

// Event is one upstream timeline blurb reduced to the fields scoring needs.
// Events live for a single ingestion run and are never persisted.
type Event struct {
	EventID          string
	ClubDisplayName  string
	DetailsText      string
	IsGoal           bool
	IsAwayTeamAction bool
	GameMinute       string
	Period           int
	IsPeriodStart    bool
	IsPeriodEnd      bool
	IsGameEnd        bool
}

// Retained reports whether the event is a goal or a period/game boundary.
// Ordinary commentary is dropped before aggregation.
func (e Event) Retained() bool {
	return e.IsGoal || e.IsPeriodStart || e.IsPeriodEnd || e.IsGameEnd
}

type ActionDetail struct {
	Action Action
	Number string
	Name   string
}

// Attributed reports whether the detail names anyone at all.
func (d ActionDetail) Attributed() bool {
	return d.Number != "" || d.Name != ""
}
