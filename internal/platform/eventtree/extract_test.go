package eventtree

import (
	"testing"

	"github.com/riskibarqy/floorball-league/internal/platform/jsonp"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	v, err := jsonp.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return v
}

func TestExtract_SkipsRosterAlongsideTimeline(t *testing.T) {
	t.Parallel()

	node := decode(t, `{
		"Game": {
			"GameTeamRoster": [{"EREventInfo": {"EREventID": 999}}],
			"Home": {"Name": "IBK Dalen"}
		},
		"Timeline": {
			"TimelineBlurbs": [
				{"EREventInfo": {"EREventID": 1, "IsGoal": true}, "InsertTime": "/Date(1710000000000)/"},
				{"Text": "no envelope"},
				{"EREventInfo": {"EREventID": 2, "IsPeriodEnd": true}}
			]
		}
	}`)

	got := Extract(node)
	if len(got) != 2 {
		t.Fatalf("expected 2 envelopes, got %d: %+v", len(got), got)
	}
	if got[0].InsertTime != "/Date(1710000000000)/" {
		t.Fatalf("unexpected insert time: %q", got[0].InsertTime)
	}
	for _, env := range got {
		if id := env.Info["EREventID"]; id != nil && id.(interface{ String() string }).String() == "999" {
			t.Fatalf("roster subtree must not be visited")
		}
	}
}

func TestExtract_BareList(t *testing.T) {
	t.Parallel()

	node := decode(t, `[
		{"EREventInfo": {"EREventID": 1}},
		{"Nested": {"EREventInfo": {"EREventID": 2}}},
		42,
		null,
		{"EREventInfo": null}
	]`)

	got := Extract(node)
	if len(got) != 1 {
		t.Fatalf("expected only direct envelopes from list, got %d", len(got))
	}
}

func TestExtract_TimelineBlurbsTakesPriorityOverSiblings(t *testing.T) {
	t.Parallel()

	node := decode(t, `{
		"TimelineBlurbs": [{"EREventInfo": {"EREventID": 1}}],
		"Other": {"EREventInfo": {"EREventID": 2}}
	}`)

	got := Extract(node)
	if len(got) != 1 {
		t.Fatalf("expected TimelineBlurbs only, got %d", len(got))
	}
}

func TestExtract_DeepObjectSearch(t *testing.T) {
	t.Parallel()

	node := decode(t, `{
		"b": {"x": {"EREventInfo": {"EREventID": 2}}},
		"a": [{"EREventInfo": {"EREventID": 1}}],
		"c": {"TeamSponsors": [{"EREventInfo": {"EREventID": 3}}]},
		"d": "scalar"
	}`)

	got := Extract(node)
	if len(got) != 2 {
		t.Fatalf("expected 2 envelopes, got %d", len(got))
	}
	first := got[0].Info["EREventID"].(interface{ String() string }).String()
	if first != "1" {
		t.Fatalf("expected sorted key traversal, first id=%s", first)
	}
}

func TestExtract_TotalOverScalars(t *testing.T) {
	t.Parallel()

	for _, node := range []any{nil, "text", 12.5, true, map[string]any{}, []any{}} {
		if got := Extract(node); len(got) != 0 {
			t.Fatalf("expected no envelopes for %#v, got %d", node, len(got))
		}
	}
}

func TestRawItems(t *testing.T) {
	t.Parallel()

	list := decode(t, `[{"a":1},{"b":2}]`)
	if got := RawItems(list); len(got) != 2 {
		t.Fatalf("expected list items, got %d", len(got))
	}

	wrapped := decode(t, `{"TimelineBlurbs":[{"a":1}]}`)
	if got := RawItems(wrapped); len(got) != 1 {
		t.Fatalf("expected TimelineBlurbs items, got %d", len(got))
	}

	if got := RawItems(decode(t, `{"Other":[1,2]}`)); got != nil {
		t.Fatalf("expected nil for object without TimelineBlurbs")
	}
}
