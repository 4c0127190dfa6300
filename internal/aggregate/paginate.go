package aggregate

import "onlyremote-engine/internal/domain"

// Paginate slices jobs for q. Page size is PageSize, else Limit; with no
// size everything is returned. A page past the end is empty.
func Paginate(jobs []domain.Job, q domain.Query) []domain.Job {
	size := q.PageSize
	if size <= 0 {
		size = q.Limit
	}
	if size <= 0 {
		return jobs
	}

	start := 0
	if q.Page > 0 {
		// Checked before multiplying so huge pages can't overflow.
		if q.Page-1 > len(jobs)/size {
			return []domain.Job{}
		}
		start = (q.Page - 1) * size
	}
	if start >= len(jobs) {
		return []domain.Job{}
	}
	end := start + size
	if end > len(jobs) {
		end = len(jobs)
	}
	return jobs[start:end]
}
