package util

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Upstream feeds disagree on key casing and value types. These helpers read
// loosely typed JSON objects without failing on a mismatch.

func String(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if s := ToString(v); s != "" {
			return s
		}
	}
	return ""
}

func ToString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func StringSlice(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		if xs := ToStringSlice(m[k]); len(xs) > 0 {
			return xs
		}
	}
	return nil
}

func ToStringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, x := range t {
			if s := ToString(x); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	}
	return nil
}

func Float(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if f, ok := ToFloat(m[k]); ok {
			return f, true
		}
	}
	return 0, false
}

func ToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon, 02 Jan 2006 15:04:05 MST",
}

// ParseDate normalizes the date shapes seen across feeds: ISO strings, long
// month names and unix timestamps in seconds or milliseconds. ok is false
// when nothing matched.
func ParseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case float64:
		return fromEpoch(int64(t)), t > 0
	case json.Number:
		n, err := t.Int64()
		return fromEpoch(n), err == nil && n > 0
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, l := range dateLayouts {
			if ts, err := time.Parse(l, s); err == nil {
				return ts.UTC(), true
			}
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && len(s) >= 9 {
			return fromEpoch(n), true
		}
	}
	return time.Time{}, false
}

func fromEpoch(n int64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

// PublishedAt renders v as RFC3339, or now when v can't be parsed.
func PublishedAt(v any, now time.Time) string {
	if t, ok := ParseDate(v); ok {
		return t.Format(time.RFC3339)
	}
	return now.UTC().Format(time.RFC3339)
}

// FlexString accepts a JSON string or number. Upstream ids flip between the
// two depending on the feed.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = FlexString(ToString(v))
	return nil
}

func (f FlexString) String() string { return string(f) }
