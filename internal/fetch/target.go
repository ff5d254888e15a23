package fetch

import (
	"regexp"
	"strings"

	"grabarr/internal/domain/command"
)

// videoIDRegex matches an 11-character source id token.
var videoIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ResolveTargets turns a free-text query or direct identifier into the
// primary fetch target, plus an unbiased fallback target when the primary
// was built with the "official video" search bias. An empty fallback means
// the primary is authoritative (direct id, URL, or an explicit search
// directive).
func ResolveTargets(query string) (primary, fallback string) {
	q := strings.TrimSpace(query)

	switch {
	case videoIDRegex.MatchString(q):
		return q, ""
	case strings.HasPrefix(q, "http://"), strings.HasPrefix(q, "https://"):
		return q, ""
	case strings.HasPrefix(q, command.SearchPrefix):
		return q, ""
	}

	if strings.Contains(strings.ToLower(q), command.OfficialBias) {
		return command.SearchOnePrefix + q, ""
	}

	// Bias ranking toward official uploads; rerun unbiased if the biased
	// search yields nothing.
	return command.SearchOnePrefix + q + " " + command.OfficialBias,
		command.SearchOnePrefix + q
}
