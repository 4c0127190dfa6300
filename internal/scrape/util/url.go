package util

import (
	"net/url"
	"strings"
)

// BuildURL appends encoded query values to base, which may already carry a
// query string.
func BuildURL(base string, v url.Values) string {
	if len(v) == 0 {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + v.Encode()
}
