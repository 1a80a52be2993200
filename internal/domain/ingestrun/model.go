package ingestrun

import "time"

type Kind string

const (
	KindGames   Kind = "games"
	KindPlayers Kind = "players"
)

type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run records one ingestion execution and its outcome counters.
type Run struct {
	RunID        string     `json:"runId"`
	Kind         Kind       `json:"kind"`
	Status       Status     `json:"status"`
	Fetched      int        `json:"fetched"`
	Saved        int        `json:"saved"`
	Errors       int        `json:"errors"`
	StopReason   string     `json:"stopReason,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	TraceID      string     `json:"traceId,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
}

func ParseKind(v string) (Kind, bool) {
	switch Kind(v) {
	case KindGames, KindPlayers:
		return Kind(v), true
	default:
		return "", false
	}
}
