package domain

import "strings"

const (
	SortNewest = "newest"
	SortOldest = "oldest"
)

// Query is what a caller asks the aggregator for. Zero values mean "no constraint".
type Query struct {
	Q        string
	Category string
	Location string
	JobType  string
	H1B      bool
	Sources  []string
	Page     int
	PageSize int
	Limit    int
	Sort     string
}

// WantsH1B reports whether the H1B restriction applies, either via the flag
// or via job_type=h1b.
func (q Query) WantsH1B() bool {
	return q.H1B || strings.EqualFold(strings.TrimSpace(q.JobType), "h1b")
}

type Result struct {
	Jobs  []Job `json:"jobs"`
	Total int   `json:"total"`
}
