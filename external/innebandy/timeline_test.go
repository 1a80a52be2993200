package innebandy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/riskibarqy/floorball-league/internal/domain/rawdata"
	"github.com/riskibarqy/floorball-league/internal/platform/jsonp"
	"github.com/riskibarqy/floorball-league/internal/platform/resilience"
)

const firstTimelinePage = `{"GameTeamRoster":{"EREventInfo":{"IsGoal":true}},"TimelineBlurbs":[
	{"EREventInfo":{"EREventID":"e1","IsPeriodStart":true,"Period":1},"InsertTime":"/Date(1736690540000)/"},
	{"EREventInfo":{"EREventID":"e2","IsGoal":true,"ClubDisplayName":"Alpha IBK","DetailsText":"12 Anna Berg, ass 7 Cara Dahl","GameMinute":"04:12","Period":1},"InsertTime":"/Date(1736690580000)/"},
	{"EREventInfo":{"EREventID":"e3","DetailsText":"Timeout"},"InsertTime":"/Date(1736690600000)/"}
]}`

const secondTimelinePage = `[
	{"EREventInfo":{"EREventID":"e4","IsGoal":true,"IsAwayTeamAction":true,"ClubDisplayName":"Beta FC","DetailsText":"9 Dana Ek","Period":2},"InsertTime":"/Date(1736690640000)/"},
	{"EREventInfo":{"EREventID":"e5","IsGameEnd":true,"Period":3},"InsertTime":"/Date(1736690660000)/"}
]`

func jsonpBody(r *http.Request, payload string) string {
	return r.URL.Query().Get("callback") + "(" + payload + ");"
}

func TestFetchTimeline_PagesUntilEmpty(t *testing.T) {
	t.Parallel()

	var moreQueries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("timeline endpoints take a bearer token, got %q", got)
		}
		if got := r.Header.Get("sec-ch-ua-platform"); got != `"macOS"` {
			t.Errorf("unexpected sec-ch-ua-platform: %q", got)
		}
		w.Header().Set("Content-Type", "text/javascript")
		switch {
		case strings.HasSuffix(r.URL.Path, "/initlivetimelineblurbs"):
			_, _ = w.Write([]byte(jsonpBody(r, firstTimelinePage)))
		case strings.HasSuffix(r.URL.Path, "/getmoretimelineblurbs/"):
			moreQueries = append(moreQueries, r.URL.Query().Get("lasttimelineitem")+"|"+r.URL.Query().Get("lastitemid"))
			if len(moreQueries) == 1 {
				_, _ = w.Write([]byte(jsonpBody(r, secondTimelinePage)))
				return
			}
			_, _ = w.Write([]byte(jsonpBody(r, `{"TimelineBlurbs":[]}`)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	archive := &recordingArchive{}
	client := newTestClient(srv, archive, resilience.CircuitBreakerConfig{})

	events, err := client.FetchTimeline(context.Background(), 555)
	if err != nil {
		t.Fatalf("fetch timeline: %v", err)
	}

	wantIDs := []string{"e1", "e2", "e4", "e5"}
	if len(events) != len(wantIDs) {
		t.Fatalf("expected %d retained events, got %+v", len(wantIDs), events)
	}
	for i, id := range wantIDs {
		if events[i].EventID != id {
			t.Fatalf("event[%d]: expected %s, got %s", i, id, events[i].EventID)
		}
	}
	if events[1].DetailsText != "12 Anna Berg, ass 7 Cara Dahl" || events[1].Period != 1 {
		t.Fatalf("unexpected goal event: %+v", events[1])
	}
	if !events[2].IsAwayTeamAction {
		t.Fatalf("expected away action on e4")
	}

	wantCursors := []string{"2025-01-12 14:03:20|e3", "2025-01-12 14:04:20|e5"}
	if len(moreQueries) != len(wantCursors) {
		t.Fatalf("expected %d more-page calls, got %v", len(wantCursors), moreQueries)
	}
	for i := range wantCursors {
		if moreQueries[i] != wantCursors[i] {
			t.Fatalf("cursor[%d]: expected %s, got %s", i, wantCursors[i], moreQueries[i])
		}
	}
	if len(archive.items) != 3 || archive.items[0].EntityType != rawdata.EntityTimelinePage {
		t.Fatalf("expected 3 archived timeline pages, got %d", len(archive.items))
	}
}

func TestFetchTimeline_StopsWhenCursorItemLacksTimestamp(t *testing.T) {
	t.Parallel()

	var more int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/getmoretimelineblurbs/") {
			more++
		}
		_, _ = w.Write([]byte(jsonpBody(r, `[{"EREventInfo":{"EREventID":"e1","IsGoal":true,"DetailsText":"4 Bo"}}]`)))
	}))
	defer srv.Close()

	client := newTestClient(srv, nil, resilience.CircuitBreakerConfig{})
	events, err := client.FetchTimeline(context.Background(), 1)
	if err != nil {
		t.Fatalf("fetch timeline: %v", err)
	}
	if len(events) != 1 || more != 0 {
		t.Fatalf("expected single page, got events=%d more=%d", len(events), more)
	}
}

func TestFetchTimeline_StopsWhenCursorRepeats(t *testing.T) {
	t.Parallel()

	var more int
	page := `[{"EREventInfo":{"EREventID":"e1","IsGoal":true,"DetailsText":"4 Bo"},"InsertTime":"/Date(1736690540000)/"}]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/getmoretimelineblurbs/") {
			more++
		}
		_, _ = w.Write([]byte(jsonpBody(r, page)))
	}))
	defer srv.Close()

	client := newTestClient(srv, nil, resilience.CircuitBreakerConfig{})
	events, err := client.FetchTimeline(context.Background(), 1)
	if err != nil {
		t.Fatalf("fetch timeline: %v", err)
	}
	if more != 1 {
		t.Fatalf("expected exactly one more-page call before the repeat is detected, got %d", more)
	}
	if len(events) != 1 || events[0].EventID != "e1" {
		t.Fatalf("expected the repeated goal once, got %+v", events)
	}
}

func TestFetchTimeline_DropsEventsRepeatedAcrossPages(t *testing.T) {
	t.Parallel()

	var more int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/getmoretimelineblurbs/") {
			_, _ = w.Write([]byte(jsonpBody(r, `[{"EREventInfo":{"EREventID":"e1","IsGoal":true,"DetailsText":"4 Bo"},"InsertTime":"/Date(1736690540000)/"}]`)))
			return
		}
		more++
		if more > 1 {
			_, _ = w.Write([]byte(jsonpBody(r, `[]`)))
			return
		}
		_, _ = w.Write([]byte(jsonpBody(r, `[
			{"EREventInfo":{"EREventID":"e1","IsGoal":true,"DetailsText":"4 Bo"},"InsertTime":"/Date(1736690540000)/"},
			{"EREventInfo":{"EREventID":"e2","IsGoal":true,"DetailsText":"8 Li"},"InsertTime":"/Date(1736690600000)/"}
		]`)))
	}))
	defer srv.Close()

	client := newTestClient(srv, nil, resilience.CircuitBreakerConfig{})
	events, err := client.FetchTimeline(context.Background(), 1)
	if err != nil {
		t.Fatalf("fetch timeline: %v", err)
	}
	if len(events) != 2 || events[0].EventID != "e1" || events[1].EventID != "e2" {
		t.Fatalf("expected e1 then e2 once each, got %+v", events)
	}
}

func TestFetchTimeline_StopsWhenPageHasNoItemList(t *testing.T) {
	t.Parallel()

	var more int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/getmoretimelineblurbs/") {
			more++
		}
		_, _ = w.Write([]byte(jsonpBody(r, `{"Game":{"Block":{"EREventInfo":{"EREventID":"e1","IsGoal":true,"DetailsText":"4 Bo"},"InsertTime":"/Date(1736690540000)/"}}}`)))
	}))
	defer srv.Close()

	client := newTestClient(srv, nil, resilience.CircuitBreakerConfig{})
	events, err := client.FetchTimeline(context.Background(), 1)
	if err != nil {
		t.Fatalf("fetch timeline: %v", err)
	}
	if more != 0 || len(events) != 1 {
		t.Fatalf("expected first page only, got events=%d more=%d", len(events), more)
	}
}

func TestFetchTimeline_DecodeFailurePropagates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Query().Get("callback") + "({broken"))
	}))
	defer srv.Close()

	client := newTestClient(srv, nil, resilience.CircuitBreakerConfig{})
	_, err := client.FetchTimeline(context.Background(), 1)
	var parseErr *jsonp.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected jsonp parse error, got %v", err)
	}
}

func TestParseNetDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "/Date(1736690600000)/", want: "2025-01-12 14:03:20", ok: true},
		{in: "/Date(1736690600999+0100)/", want: "2025-01-12 14:03:20", ok: true},
		{in: "/Date(0)/", want: "1970-01-01 00:00:00", ok: true},
		{in: "", ok: false},
		{in: "/Date()/", ok: false},
	}
	for _, tc := range cases {
		got, ok := ParseNetDate(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseNetDate(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
