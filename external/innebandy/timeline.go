package innebandy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/floorball-league/internal/domain/rawdata"
	"github.com/riskibarqy/floorball-league/internal/domain/timeline"
	"github.com/riskibarqy/floorball-league/internal/platform/eventtree"
	"github.com/riskibarqy/floorball-league/internal/platform/jsonp"
)

const timelineTimeLayout = "2006-01-02 15:04:05"

// TimelineCursor addresses the page after a given event.
type TimelineCursor struct {
	LastTimelineItem string
	LastItemID       string
}

// FetchTimeline walks every timeline page of a game and returns the goal and
// period boundary events in page order. Any fetch or decode failure aborts
// the walk.
func (c *Client) FetchTimeline(ctx context.Context, gameID int64) ([]timeline.Event, error) {
	if gameID <= 0 {
		return nil, fmt.Errorf("game id must be greater than zero")
	}

	node, err := c.fetchTimelinePage(ctx, gameID, nil)
	if err != nil {
		return nil, err
	}

	var (
		events []timeline.Event
		seen   = make(map[string]struct{})
		prev   TimelineCursor
		pages  = 1
	)
	for {
		envelopes := eventtree.Extract(node)
		if len(envelopes) == 0 {
			break
		}

		cursor, ok := nextTimelineCursor(node)
		if ok && cursor == prev {
			c.logger.WarnContext(ctx, "timeline cursor did not advance, stopping", "game_id", gameID, "last_item_id", cursor.LastItemID)
			break
		}
		events = appendRetained(events, envelopes, seen)
		if !ok {
			c.logger.DebugContext(ctx, "timeline page has no usable cursor item, stopping", "game_id", gameID, "pages", pages)
			break
		}
		if pages >= c.timelineMaxPages {
			c.logger.WarnContext(ctx, "timeline page cap reached", "game_id", gameID, "pages", pages)
			break
		}
		prev = cursor

		node, err = c.fetchTimelinePage(ctx, gameID, &cursor)
		if err != nil {
			return nil, err
		}
		pages++
	}

	return events, nil
}

func (c *Client) fetchTimelinePage(ctx context.Context, gameID int64, cursor *TimelineCursor) (any, error) {
	now := c.now()
	values := url.Values{}
	values.Set("gameid", strconv.FormatInt(gameID, 10))
	base := c.timelineURL
	entityKey := fmt.Sprintf("game=%d", gameID)
	if cursor != nil {
		base = c.moreTimelineURL
		values.Set("lasttimelineitem", cursor.LastTimelineItem)
		values.Set("lastitemid", cursor.LastItemID)
		entityKey += "&lastitemid=" + cursor.LastItemID
	}
	values.Set("callback", jsonp.CallbackName(now))
	values.Set("_", strconv.FormatInt(now.UnixMilli(), 10))

	raw, err := c.get(ctx, base+"?"+values.Encode(), c.timelineHeader())
	if err != nil {
		return nil, fmt.Errorf("fetch timeline game_id=%d: %w", gameID, err)
	}

	node, err := jsonp.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode timeline game_id=%d: %w", gameID, err)
	}
	c.archivePage(ctx, rawdata.EntityTimelinePage, entityKey, raw)
	return node, nil
}

func (c *Client) timelineHeader() http.Header {
	h := c.baseHeader()
	h.Set("Authorization", "Bearer "+c.token)
	h.Set("Accept", "text/javascript, application/javascript, application/ecmascript, application/x-ecmascript, */*; q=0.01")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	h.Set("sec-ch-ua", `"Chromium";v="134", "Not:A-Brand";v="24", "Google Chrome";v="134"`)
	h.Set("sec-ch-ua-mobile", "?0")
	h.Set("sec-ch-ua-platform", `"macOS"`)
	return h
}

// nextTimelineCursor reads the cursor from the last raw item of the page. A
// page without an item list, or whose last item lacks a timestamp or id, ends
// the walk.
func nextTimelineCursor(node any) (TimelineCursor, bool) {
	items := eventtree.RawItems(node)
	if len(items) == 0 {
		return TimelineCursor{}, false
	}
	last, ok := eventtree.EnvelopeOf(items[len(items)-1])
	if !ok {
		return TimelineCursor{}, false
	}

	ts, ok := ParseNetDate(last.InsertTime)
	if !ok {
		return TimelineCursor{}, false
	}
	id := stringValue(last.Info["EREventID"])
	if id == "" {
		return TimelineCursor{}, false
	}
	return TimelineCursor{LastTimelineItem: ts, LastItemID: id}, true
}

// ParseNetDate converts a /Date(<ms>)/ timestamp to "YYYY-MM-DD HH:MM:SS" in
// UTC. The first run of digits is taken as epoch milliseconds.
func ParseNetDate(s string) (string, bool) {
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return "", false
	}
	end := start
	for end < len(s) && isDigit(rune(s[end])) {
		end++
	}
	ms, err := strconv.ParseInt(s[start:end], 10, 64)
	if err != nil {
		return "", false
	}
	return time.UnixMilli(ms).UTC().Format(timelineTimeLayout), true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// appendRetained keeps goal and period boundary events. Events already seen in
// this walk are dropped; events without an id are always kept.
func appendRetained(dst []timeline.Event, envelopes []eventtree.Envelope, seen map[string]struct{}) []timeline.Event {
	for _, env := range envelopes {
		event := toEvent(env.Info)
		if !event.Retained() {
			continue
		}
		if event.EventID != "" {
			if _, dup := seen[event.EventID]; dup {
				continue
			}
			seen[event.EventID] = struct{}{}
		}
		dst = append(dst, event)
	}
	return dst
}

func toEvent(info map[string]any) timeline.Event {
	return timeline.Event{
		EventID:          stringValue(info["EREventID"]),
		ClubDisplayName:  stringValue(info["ClubDisplayName"]),
		DetailsText:      stringValue(info["DetailsText"]),
		IsGoal:           boolValue(info["IsGoal"]),
		IsAwayTeamAction: boolValue(info["IsAwayTeamAction"]),
		GameMinute:       stringValue(info["GameMinute"]),
		Period:           intValue(info["Period"]),
		IsPeriodStart:    boolValue(info["IsPeriodStart"]),
		IsPeriodEnd:      boolValue(info["IsPeriodEnd"]),
		IsGameEnd:        boolValue(info["IsGameEnd"]),
	}
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func boolValue(v any) bool {
	b, _ := v.(bool)
	return b
}

func intValue(v any) int {
	switch t := v.(type) {
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
