package jsonp

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"
)

func TestDecode_StripsCallbackWrapper(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{name: "with semicolon", in: `jQuery17100000000001234_1710000000000({"TimelineBlurbs":[]});`},
		{name: "without semicolon", in: `jQuery17100000000001234_1710000000000({"TimelineBlurbs":[]})`},
		{name: "surrounding whitespace", in: "  cb({\"TimelineBlurbs\":[]}) ;\n"},
		{name: "plain json", in: `{"TimelineBlurbs":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			obj, ok := got.(map[string]any)
			if !ok {
				t.Fatalf("expected object, got %T", got)
			}
			if _, ok := obj["TimelineBlurbs"]; !ok {
				t.Fatalf("expected TimelineBlurbs key, got %v", obj)
			}
		})
	}
}

func TestDecode_KeepsNumbersExact(t *testing.T) {
	t.Parallel()

	got, err := Decode([]byte(`cb([{"EREventID":9007199254740993}])`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	items := got.([]any)
	id, ok := items[0].(map[string]any)["EREventID"].(json.Number)
	if !ok {
		t.Fatalf("expected json.Number, got %T", items[0].(map[string]any)["EREventID"])
	}
	if id.String() != "9007199254740993" {
		t.Fatalf("unexpected id: %s", id)
	}
}

func TestDecode_ParseError(t *testing.T) {
	t.Parallel()

	tests := []string{
		``,
		`cb({"broken":)`,
		`cb({"a":1}`,
		`<html>Service Unavailable</html>`,
	}

	for _, in := range tests {
		_, err := Decode([]byte(in))
		if err == nil {
			t.Fatalf("expected error for %q", in)
		}
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected ParseError for %q, got %T", in, err)
		}
	}
}

func TestCallbackName_Shape(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1710000000123)
	name := CallbackName(now)

	pattern := regexp.MustCompile(`^jQuery1710000000123\d{1,6}_1710000000123$`)
	if !pattern.MatchString(name) {
		t.Fatalf("unexpected callback name: %s", name)
	}
}
