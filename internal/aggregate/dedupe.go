package aggregate

import (
	"strings"

	"onlyremote-engine/internal/domain"
)

// Signature identifies the same posting listed under different ids, which
// happens when a source lists one role once per office.
func Signature(j domain.Job) string {
	return strings.ToLower(strings.TrimSpace(j.Title)) + "|" + strings.ToLower(strings.TrimSpace(j.Company))
}

// Dedupe keeps the first job for each id and each signature. A dropped job
// registers neither key.
func Dedupe(jobs []domain.Job) []domain.Job {
	seenIDs := make(map[string]struct{}, len(jobs))
	seenSigs := make(map[string]struct{}, len(jobs))
	out := make([]domain.Job, 0, len(jobs))

	for _, j := range jobs {
		if _, ok := seenIDs[j.ID]; ok {
			continue
		}
		sig := Signature(j)
		if _, ok := seenSigs[sig]; ok {
			continue
		}
		seenIDs[j.ID] = struct{}{}
		seenSigs[sig] = struct{}{}
		out = append(out, j)
	}
	return out
}
