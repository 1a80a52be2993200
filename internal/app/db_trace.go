package app

import (
	"regexp"
	"strconv"
	"strings"
)

const maxTracedQueryLength = 512

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
	// Matches the placeholder tuples of a multi-row VALUES list.
	valuesTupleRegex = regexp.MustCompile(`\(\$\d+(?:, ?\$\d+)*\)(?:, ?\(\$\d+(?:, ?\$\d+)*\))+`)
	tupleRegex       = regexp.MustCompile(`\(\$\d+(?:, ?\$\d+)*\)`)
)

// formatDBQueryForTrace flattens whitespace and folds batch VALUES lists to
// their first tuple plus a row count, so raw payload batches keep one span
// statement shape regardless of batch size.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	normalized = valuesTupleRegex.ReplaceAllStringFunc(normalized, func(list string) string {
		tuples := tupleRegex.FindAllString(list, -1)
		return tuples[0] + " /* " + strconv.Itoa(len(tuples)) + " rows */"
	})
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}
