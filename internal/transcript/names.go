package transcript

import (
	"regexp"
	"strings"
)

// Self-introduction patterns, tried in priority order. The first match wins;
// there is no scoring across multiple hits within one utterance. Patterns run
// against final utterance text only, since interim text may still change.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bmy name is ([a-z][a-z'-]*)`),
	regexp.MustCompile(`(?i)\bthis is ([a-z][a-z'-]*) speaking\b`),
	regexp.MustCompile(`(?i)\bcall me ([a-z][a-z'-]*)`),
	regexp.MustCompile(`(?i)\bi(?:'m| am) ([a-z][a-z'-]*)\b`),
	regexp.MustCompile(`(?i)^\s*([a-z][a-z'-]*) here\b`),
}

// DetectSpeakerName scans utterance text for a self-introduction and returns
// the normalized name. It is pure: deterministic for the same input and free
// of side effects.
func DetectSpeakerName(text string) (string, bool) {
	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return normalizeName(m[1]), true
		}
	}
	return "", false
}

// normalizeName capitalizes the first letter and lowercases the remainder.
func normalizeName(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
