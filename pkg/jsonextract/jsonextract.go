// Package jsonextract recovers a JSON object from noisy LLM output.
// Models wrap answers in code fences or prepend prose even when asked
// for bare JSON, so callers run every structured reply through Extract
// before unmarshalling.
package jsonextract

import (
	"regexp"
	"strings"
)

var (
	fenceOpen  = regexp.MustCompile("^```(?:json)?\n?")
	fenceClose = regexp.MustCompile("\n?```$")
	objectSpan = regexp.MustCompile(`(?s)\{.*\}`)
)

// Extract returns the JSON object text contained in raw.
// It strips a surrounding code fence if present, and if the remainder
// does not start with '{' it falls back to the widest {...} span.
// The second return value is false when no candidate object was found;
// Extract never validates that the result actually parses.
func Extract(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if strings.HasPrefix(s, "```") {
		s = fenceOpen.ReplaceAllString(s, "")
		s = fenceClose.ReplaceAllString(s, "")
		s = strings.TrimSpace(s)
	}

	if strings.HasPrefix(s, "{") {
		return s, true
	}

	if m := objectSpan.FindString(s); m != "" {
		return m, true
	}

	return "", false
}
