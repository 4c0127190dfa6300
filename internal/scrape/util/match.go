package util

import (
	"regexp"
	"strings"
)

var (
	orSplitRe  = regexp.MustCompile(`(?i) or `)
	caseSensOr = " OR "
)

// unquote drops double quotes anywhere and single quotes at the edges, so
// phrases like 'Go' lose their quoting but O'Reilly survives.
func unquote(s string) string {
	s = strings.ReplaceAll(s, `"`, "")
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "'"))
}

// SplitDisjunction breaks a `"a b" OR c` query into sub-queries for feeds
// that can only take one search term per request. Quotes are dropped and
// duplicates removed; a query without OR yields itself.
func SplitDisjunction(q string) []string {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	if !strings.Contains(q, caseSensOr) {
		return []string{q}
	}
	seen := map[string]bool{}
	var out []string
	for _, part := range strings.Split(q, caseSensOr) {
		part = unquote(part)
		if part == "" || seen[strings.ToLower(part)] {
			continue
		}
		seen[strings.ToLower(part)] = true
		out = append(out, part)
	}
	return out
}

// QueryTerms expands a text query into lower-cased match terms: split on
// "or" (any case), then on "/", with quotes removed.
func QueryTerms(q string) []string {
	var out []string
	for _, part := range orSplitRe.Split(strings.TrimSpace(q), -1) {
		for _, t := range strings.Split(part, "/") {
			t = strings.ToLower(unquote(t))
			if t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

// MatchesAny reports whether any term is a substring of any field.
func MatchesAny(terms []string, fields ...string) bool {
	for _, f := range fields {
		f = strings.ToLower(f)
		for _, t := range terms {
			if strings.Contains(f, t) {
				return true
			}
		}
	}
	return false
}

func ContainsFold(xs []string, want string) bool {
	for _, x := range xs {
		if strings.EqualFold(strings.TrimSpace(x), want) {
			return true
		}
	}
	return false
}
