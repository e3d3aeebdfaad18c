package ratelimit

import (
	"strings"
)

// unlimited is returned for routes that bypass limiting.
var unlimited = &Tier{Name: "unlimited"}

// MatchTier returns the tier for a request, or nil when no tier applies.
// Exact patterns win over wildcard patterns, which win over prefix patterns.
func MatchTier(path, method string, tiers []Tier) *Tier {
	if path == "/health" && method == "GET" {
		return unlimited
	}

	for i := range tiers {
		t := &tiers[i]
		if t.Method == method && t.Pattern == path {
			return t
		}
	}

	for i := range tiers {
		t := &tiers[i]
		if t.Method == method && strings.Contains(t.Pattern, "*") && matchSegments(t.Pattern, path) {
			return t
		}
	}

	for i := range tiers {
		t := &tiers[i]
		if t.Method == method && strings.HasSuffix(t.Pattern, "/") && strings.HasPrefix(path, t.Pattern) {
			return t
		}
	}

	return nil
}

// matchSegments compares pattern and path segment by segment. A "*" segment
// matches any single non-empty segment.
func matchSegments(pattern, path string) bool {
	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] == "*" {
			if got[i] == "" {
				return false
			}
			continue
		}
		if want[i] != got[i] {
			return false
		}
	}
	return true
}
