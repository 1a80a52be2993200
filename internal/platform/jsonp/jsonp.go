// Package jsonp unwraps callback-wrapped JSON responses.
package jsonp

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

const snippetMaxLen = 120

// decoder keeps numbers as json.Number so large event ids survive untouched.
var decoder = sonic.Config{UseNumber: true}.Froze()

// ParseError reports a payload that could not be unwrapped or parsed.
type ParseError struct {
	Snippet string
	cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("jsonp: %v (payload %q)", e.cause, e.Snippet)
}

func (e *ParseError) Unwrap() error {
	return e.cause
}

// Decode strips a leading `identifier(` and a trailing `)` or `);` and parses
// what remains. Unwrapped JSON is accepted as is.
func Decode(text []byte) (any, error) {
	body, err := Unwrap(text)
	if err != nil {
		return nil, err
	}

	var out any
	if err := decoder.Unmarshal(body, &out); err != nil {
		return nil, &ParseError{Snippet: snippet(body), cause: crerr.Wrap(err, "decode json payload")}
	}
	return out, nil
}

// Unwrap returns the JSON text inside the callback invocation.
func Unwrap(text []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(text)
	if len(trimmed) == 0 {
		return nil, &ParseError{cause: crerr.New("empty payload")}
	}

	open := callbackPrefixLen(trimmed)
	if open < 0 {
		return trimmed, nil
	}

	body := bytes.TrimSpace(trimmed[open:])
	body = bytes.TrimSuffix(body, []byte(";"))
	body = bytes.TrimRight(body, " \t\r\n")
	if !bytes.HasSuffix(body, []byte(")")) {
		return nil, &ParseError{Snippet: snippet(trimmed), cause: crerr.New("missing closing parenthesis")}
	}
	return bytes.TrimSpace(body[:len(body)-1]), nil
}

// callbackPrefixLen returns the length of a leading `identifier(`, or -1.
func callbackPrefixLen(text []byte) int {
	if len(text) == 0 || !isIdentStart(text[0]) {
		return -1
	}
	for i := 1; i < len(text); i++ {
		switch c := text[i]; {
		case c == '(':
			return i + 1
		case isIdentPart(c):
		default:
			return -1
		}
	}
	return -1
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c == '.' || (c >= '0' && c <= '9')
}

// CallbackName builds the jQuery-style callback name upstream expects:
// jQuery<epochMillis><random 0..999999>_<epochMillis>.
func CallbackName(now time.Time) string {
	ms := now.UnixMilli()
	return fmt.Sprintf("jQuery%d%d_%d", ms, rand.IntN(1_000_000), ms)
}

func snippet(b []byte) string {
	if len(b) <= snippetMaxLen {
		return string(b)
	}
	return string(b[:snippetMaxLen]) + "..."
}
