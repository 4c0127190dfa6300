package util

import (
	"regexp"
	"strings"
)

const DefaultSnippetLength = 400

var (
	tagRe        = regexp.MustCompile(`<[^>]*>?`)
	entityDecode = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// StripHTML turns markup into a single line of plain text. Only the handful of
// entities job feeds actually emit are decoded. Stripping repeats until the
// text stops changing, so escaped markup and double-encoded entities can't
// leave a result that a second call would alter. Every pass that changes the
// text makes it shorter, so the loop ends.
func StripHTML(html string) string {
	text := html
	for text != "" {
		next := CleanText(entityDecode.Replace(tagRe.ReplaceAllString(text, " ")))
		if next == text {
			break
		}
		text = next
	}
	return text
}

// MakeSnippet truncates text to max runes, preferring a word boundary, and
// marks the cut with "...". max <= 0 means DefaultSnippetLength.
func MakeSnippet(text string, max int) string {
	if max <= 0 {
		max = DefaultSnippetLength
	}
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	cut := string(r[:max])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

// Snippet is the usual adapter pipeline for a raw description.
func Snippet(html string) string {
	return MakeSnippet(StripHTML(html), DefaultSnippetLength)
}

// NormalizeLocation dedupes comma separated parts case-insensitively.
func NormalizeLocation(loc string) string {
	return JoinUnique(strings.Split(CleanText(loc), ","), ", ")
}

func JoinUnique(parts []string, sep string) string {
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, sep)
}

func FirstNonEmpty(xs ...string) string {
	for _, x := range xs {
		if strings.TrimSpace(x) != "" {
			return strings.TrimSpace(x)
		}
	}
	return ""
}

// LocationOrRemote applies the canonical default for missing locations.
func LocationOrRemote(loc string) string {
	if loc = CleanText(loc); loc == "" {
		return "Remote"
	}
	return loc
}
