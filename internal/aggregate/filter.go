package aggregate

import (
	"strings"

	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/scrape/util"
)

const (
	JobTypeInternship        = "internship"
	JobTypeGlobalSponsorship = "global-sponsorship"
	JobTypeH1B               = "h1b"

	TagH1B               = "H1B"
	TagGlobalSponsorship = "Global Sponsorship"
)

// Filter applies the text, location, job type and H1B filters of q. Each
// is skipped when empty; together they must all hold.
func Filter(jobs []domain.Job, q domain.Query) []domain.Job {
	terms := util.QueryTerms(q.Q)
	loc := strings.ToLower(strings.TrimSpace(q.Location))
	jobType := strings.ToLower(strings.TrimSpace(q.JobType))
	h1b := q.WantsH1B()

	out := make([]domain.Job, 0, len(jobs))
	for _, j := range jobs {
		if len(terms) > 0 && !matchesText(j, terms) {
			continue
		}
		if loc != "" && !strings.Contains(strings.ToLower(j.Location), loc) {
			continue
		}
		if !matchesJobType(j, jobType) {
			continue
		}
		if h1b && !hasTag(j, TagH1B) {
			continue
		}
		out = append(out, j)
	}
	return out
}

func matchesText(j domain.Job, terms []string) bool {
	fields := make([]string, 0, 2+len(j.Tags))
	fields = append(fields, j.Title, j.Company)
	fields = append(fields, j.Tags...)
	return util.MatchesAny(terms, fields...)
}

// matchesJobType handles every job_type value except h1b, which is the H1B
// flag's business.
func matchesJobType(j domain.Job, jobType string) bool {
	switch jobType {
	case "", JobTypeH1B:
		return true
	case JobTypeInternship:
		fields := append([]string{j.Title, deref(j.JobType)}, j.Tags...)
		return util.MatchesAny([]string{"intern"}, fields...)
	case JobTypeGlobalSponsorship:
		return hasTag(j, TagGlobalSponsorship)
	default:
		if j.JobType == nil {
			return false
		}
		return strings.Contains(normalizeJobType(*j.JobType), normalizeJobType(jobType))
	}
}

func normalizeJobType(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.ToLower(s)
}

func hasTag(j domain.Job, tag string) bool {
	for _, t := range j.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
