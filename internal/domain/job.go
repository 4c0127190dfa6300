package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Job is the canonical posting every source adapter normalizes into.
type Job struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Company            string   `json:"company"`
	Location           string   `json:"location"`
	Category           Category `json:"category"`
	JobType            *string  `json:"job_type"`
	Salary             *string  `json:"salary"`
	Tags               []string `json:"tags"`
	DescriptionSnippet string   `json:"description_snippet"`
	Source             string   `json:"source"`
	ApplyURL           string   `json:"apply_url"`
	SourceURL          string   `json:"source_url"`
	PublishedAt        string   `json:"published_at"`
	CompanyLogo        *string  `json:"company_logo"`
}

// MarshalJSON keeps tags a list even when an adapter left them nil.
func (j Job) MarshalJSON() ([]byte, error) {
	type alias Job
	a := alias(j)
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return json.Marshal(a)
}

// Published parses PublishedAt, falling back to now for anything unparseable.
func (j Job) Published(now time.Time) time.Time {
	return ParseTimestamp(j.PublishedAt, now)
}

// ParseTimestamp accepts the formats adapters emit and returns fallback on failure.
func ParseTimestamp(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}

// FormatTimestamp renders t the way Job.PublishedAt stores it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Ptr returns nil for empty strings so optional fields encode as null.
func Ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Category is either a single label or a list, depending on the source.
type Category struct {
	Values []string
	List   bool
}

func SingleCategory(v string) Category {
	if v == "" {
		return Category{}
	}
	return Category{Values: []string{v}}
}

func ListCategory(vs []string) Category {
	return Category{Values: vs, List: true}
}

func (c Category) String() string {
	if len(c.Values) == 0 {
		return ""
	}
	return c.Values[0]
}

func (c Category) MarshalJSON() ([]byte, error) {
	if c.List {
		vs := c.Values
		if vs == nil {
			vs = []string{}
		}
		return json.Marshal(vs)
	}
	return json.Marshal(c.String())
}

func (c *Category) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var vs []string
		if err := json.Unmarshal(b, &vs); err != nil {
			return err
		}
		*c = ListCategory(vs)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*c = Category{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*c = SingleCategory(s)
	return nil
}
