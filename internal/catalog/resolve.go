package catalog

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/career-portal/internal/types"
)

// MatchKind records which resolution pass matched an input.
type MatchKind string

// Match kinds, in evaluation order.
const (
	MatchKeyword MatchKind = "keyword"
	MatchAlias   MatchKind = "alias"
	MatchFuzzy   MatchKind = "fuzzy"
	MatchNone    MatchKind = "none"
)

var (
	roleDisallowed = regexp.MustCompile(`[^\w\s/+.-]`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// NormalizeRole lowercases s, replaces characters other than word
// characters, whitespace and "/+.-" with spaces, collapses whitespace and
// trims. It is idempotent.
func NormalizeRole(s string) string {
	s = strings.ToLower(s)
	s = roleDisallowed.ReplaceAllString(s, " ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Resolve maps free text to a catalog entry. Passes run in order: keyword
// rules (first rule with a keyword contained in the input), exact alias, then
// fuzzy alias scoring. A nil entry is returned with MatchNone when nothing
// scores above zero or the input normalizes to empty.
func (c *Catalog) Resolve(text string) (*FixedRoleRoadmap, MatchKind) {
	normalized := NormalizeRole(text)
	if normalized == "" {
		return nil, MatchNone
	}

	for _, rule := range c.keywords {
		for _, kw := range rule.Keywords {
			k := NormalizeRole(kw)
			if k != "" && strings.Contains(normalized, k) {
				if entry, ok := c.Lookup(rule.Role); ok {
					return entry, MatchKeyword
				}
			}
		}
	}

	for i := range c.roles {
		for _, alias := range c.roles[i].Aliases {
			if NormalizeRole(alias) == normalized {
				return c.roles[i].clone(), MatchAlias
			}
		}
	}

	best, score := c.fuzzyBest(normalized)
	if score <= 0 {
		return nil, MatchNone
	}
	return c.roles[best].clone(), MatchFuzzy
}

type scoredRole struct {
	index int
	score int
}

// fuzzyBest scores every role against the normalized input. Each alias adds
// 6 on equality, otherwise 4 when the input contains it, otherwise 2 when it
// contains an input of at least 4 characters; every alias also adds the count
// of its tokens present in the input. The sort is stable so ties keep
// catalog order.
func (c *Catalog) fuzzyBest(normalized string) (int, int) {
	tokens := make(map[string]bool)
	for _, t := range strings.Fields(normalized) {
		tokens[t] = true
	}

	scored := make([]scoredRole, len(c.roles))
	for i, role := range c.roles {
		score := 0
		for _, alias := range role.Aliases {
			a := NormalizeRole(alias)
			switch {
			case a == normalized:
				score += 6
			case strings.Contains(normalized, a):
				score += 4
			case strings.Contains(a, normalized) && len(normalized) >= 4:
				score += 2
			}
			for _, t := range strings.Fields(a) {
				if tokens[t] {
					score++
				}
			}
		}
		scored[i] = scoredRole{index: i, score: score}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) == 0 {
		return -1, 0
	}
	return scored[0].index, scored[0].score
}

// RoadmapFor resolves text and returns the enriched payload, or the
// unsupported payload when no role matches.
func (c *Catalog) RoadmapFor(text string) types.CareerRoadmap {
	roadmap, _ := c.RoadmapWithMatch(text)
	return roadmap
}

// RoadmapWithMatch is RoadmapFor plus the match kind, for callers that log it.
func (c *Catalog) RoadmapWithMatch(text string) (types.CareerRoadmap, MatchKind) {
	entry, kind := c.Resolve(text)
	if entry == nil {
		return Unsupported(text), kind
	}
	return c.Enrich(entry), kind
}
