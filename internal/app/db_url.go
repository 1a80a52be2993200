package app

import (
	"net/url"
	"strings"
)

// parseURLDSN returns nil for keyword/value DSNs such as "host=x dbname=y".
func parseURLDSN(raw string) *url.URL {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme == "" {
		return nil
	}
	return parsed
}

func keywordDSNValue(raw, key string) (string, bool) {
	for _, token := range strings.Fields(raw) {
		k, v, ok := strings.Cut(token, "=")
		if ok && k == key {
			return strings.Trim(v, `"'`), true
		}
	}
	return "", false
}

// normalizeDBURL tags the connection with application_name so the service
// shows up in pg_stat_activity. An explicit value in the url wins.
func normalizeDBURL(raw, applicationName string) string {
	applicationName = strings.TrimSpace(applicationName)
	if applicationName == "" {
		return raw
	}

	if parsed := parseURLDSN(raw); parsed != nil {
		query := parsed.Query()
		if query.Get("application_name") != "" {
			return raw
		}
		query.Set("application_name", applicationName)
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}

	if _, ok := keywordDSNValue(raw, "application_name"); ok || !strings.Contains(raw, "=") {
		return raw
	}
	return strings.TrimSpace(raw) + " application_name=" + applicationName
}

// dbNameFromURL feeds the db.name span attribute; empty when unknown.
func dbNameFromURL(raw string) string {
	if parsed := parseURLDSN(raw); parsed != nil {
		if name := strings.TrimPrefix(parsed.Path, "/"); name != "" {
			return name
		}
	}
	name, _ := keywordDSNValue(raw, "dbname")
	return name
}
