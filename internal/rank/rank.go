// Package rank orders aggregated jobs for display.
package rank

import (
	"sort"
	"strings"
	"time"

	"onlyremote-engine/internal/domain"
)

type Ranker interface {
	Rank(jobs []domain.Job, now time.Time) []domain.Job
}

// For returns the ranker for a query's sort value. Anything other than
// "oldest" ranks newest first.
func For(sortBy string) Ranker {
	if strings.EqualFold(strings.TrimSpace(sortBy), domain.SortOldest) {
		return Oldest{}
	}
	return DailyRoundRobin{}
}

type stamped struct {
	job domain.Job
	at  time.Time
}

func stamp(jobs []domain.Job, now time.Time) []stamped {
	out := make([]stamped, len(jobs))
	for i, j := range jobs {
		out[i] = stamped{job: j, at: j.Published(now)}
	}
	return out
}

func unstamp(xs []stamped) []domain.Job {
	out := make([]domain.Job, len(xs))
	for i, x := range xs {
		out[i] = x.job
	}
	return out
}

// Newest sorts by publish time descending. Ties keep their input order.
func Newest(jobs []domain.Job, now time.Time) []domain.Job {
	xs := stamp(jobs, now)
	sort.SliceStable(xs, func(i, j int) bool { return xs[i].at.After(xs[j].at) })
	return unstamp(xs)
}

type Oldest struct{}

func (Oldest) Rank(jobs []domain.Job, now time.Time) []domain.Job {
	xs := stamp(jobs, now)
	sort.SliceStable(xs, func(i, j int) bool { return xs[i].at.Before(xs[j].at) })
	return unstamp(xs)
}

// DailyRoundRobin keeps days newest first but, within one UTC day, takes
// one job per source in turn so a single high-volume feed can't bury the
// rest. Sources rotate in the order they first appear in the day once the
// day is sorted newest first.
type DailyRoundRobin struct{}

func (DailyRoundRobin) Rank(jobs []domain.Job, now time.Time) []domain.Job {
	xs := stamp(jobs, now)
	sort.SliceStable(xs, func(i, j int) bool { return xs[i].at.After(xs[j].at) })

	out := make([]domain.Job, 0, len(xs))
	for start := 0; start < len(xs); {
		day := dayKey(xs[start].at)
		end := start
		for end < len(xs) && dayKey(xs[end].at) == day {
			end++
		}
		out = append(out, interleave(xs[start:end])...)
		start = end
	}
	return out
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func interleave(day []stamped) []domain.Job {
	var order []string
	queues := map[string][]domain.Job{}
	for _, x := range day {
		src := x.job.Source
		if _, ok := queues[src]; !ok {
			order = append(order, src)
		}
		queues[src] = append(queues[src], x.job)
	}

	out := make([]domain.Job, 0, len(day))
	for len(out) < len(day) {
		for _, src := range order {
			if q := queues[src]; len(q) > 0 {
				out = append(out, q[0])
				queues[src] = q[1:]
			}
		}
	}
	return out
}
