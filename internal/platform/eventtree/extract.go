// Package eventtree finds timeline event envelopes in upstream payloads whose
// shape is not fixed.
package eventtree

import "sort"

const (
	keyEventInfo      = "EREventInfo"
	keyInsertTime     = "InsertTime"
	keyTimelineBlurbs = "TimelineBlurbs"
	keyGameTeamRoster = "GameTeamRoster"
	keyTeamSponsors   = "TeamSponsors"
)

// Envelope is one event record found in the tree.
type Envelope struct {
	Info       map[string]any
	InsertTime string
}

// Extract walks a decoded JSON value and returns every event envelope it holds.
// Rules, first match wins:
//  1. a list keeps only elements that carry EREventInfo
//  2. an object carrying EREventInfo is itself the envelope
//  3. an object carrying TimelineBlurbs is searched through that field only
//  4. roster and sponsor objects are pruned
//  5. any other object is searched value by value, keys in sorted order
//
// Scalars and null yield nothing. Extract never fails.
func Extract(node any) []Envelope {
	switch v := node.(type) {
	case []any:
		var out []Envelope
		for _, item := range v {
			obj, ok := item.(map[string]any)
			if !ok || !present(obj, keyEventInfo) {
				continue
			}
			out = append(out, envelopeOf(obj))
		}
		return out
	case map[string]any:
		return extractObject(v)
	default:
		return nil
	}
}

func extractObject(obj map[string]any) []Envelope {
	if present(obj, keyEventInfo) {
		return []Envelope{envelopeOf(obj)}
	}
	if present(obj, keyTimelineBlurbs) {
		return Extract(obj[keyTimelineBlurbs])
	}
	if present(obj, keyGameTeamRoster) || present(obj, keyTeamSponsors) {
		return nil
	}

	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out []Envelope
	for _, key := range keys {
		switch obj[key].(type) {
		case map[string]any, []any:
			out = append(out, Extract(obj[key])...)
		}
	}
	return out
}

// RawItems returns the page-level item list: the payload itself when it is a
// list, or its TimelineBlurbs field. Pagination cursors come from its tail.
func RawItems(node any) []any {
	switch v := node.(type) {
	case []any:
		return v
	case map[string]any:
		items, _ := v[keyTimelineBlurbs].([]any)
		return items
	default:
		return nil
	}
}

// EnvelopeOf reads an envelope from a raw item, if it carries one.
func EnvelopeOf(item any) (Envelope, bool) {
	obj, ok := item.(map[string]any)
	if !ok || !present(obj, keyEventInfo) {
		return Envelope{}, false
	}
	return envelopeOf(obj), true
}

func envelopeOf(obj map[string]any) Envelope {
	info, _ := obj[keyEventInfo].(map[string]any)
	if info == nil {
		info = map[string]any{}
	}
	insertTime, _ := obj[keyInsertTime].(string)
	return Envelope{Info: info, InsertTime: insertTime}
}

// present treats null, false and empty strings as absent, matching how
// upstream omits optional blocks.
func present(obj map[string]any, key string) bool {
	v, ok := obj[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	default:
		return true
	}
}
