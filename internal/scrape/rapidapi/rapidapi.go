// Package rapidapi holds what the paid job feeds share: key headers, the
// advanced title filter syntax and the common ATS posting shape.
package rapidapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/scrape/types"
	"onlyremote-engine/internal/scrape/util"
)

// Headers builds the auth pair. The host header must name the API, not
// whatever BaseURL currently points at.
func Headers(key, apiHost string) http.Header {
	h := http.Header{}
	h.Set("x-rapidapi-key", key)
	h.Set("x-rapidapi-host", apiHost)
	return h
}

func RequireKey(cfg types.Config) error {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return types.ErrMissingCredentials
	}
	return nil
}

// AdvancedTitleFilter rewrites `"a b" OR c` into the feed's `('a b' | c)` form.
func AdvancedTitleFilter(q string) string {
	q = strings.ReplaceAll(q, `"`, "'")
	q = strings.ReplaceAll(q, " OR ", " | ")
	return "(" + q + ")"
}

// SetTitleFilter picks title_filter or advanced_title_filter for q.
func SetTitleFilter(v url.Values, q string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return
	}
	if strings.Contains(q, " OR ") {
		v.Set("advanced_title_filter", AdvancedTitleFilter(q))
		return
	}
	v.Set("title_filter", q)
}

// Posting is the record shape of the active-jobs family of feeds.
type Posting struct {
	ID                util.FlexString `json:"id"`
	Title             string          `json:"title"`
	Organization      string          `json:"organization"`
	OrganizationLogo  string          `json:"organization_logo"`
	DatePosted        any             `json:"date_posted"`
	URL               string          `json:"url"`
	DescriptionText   string          `json:"description_text"`
	DescriptionHTML   string          `json:"description_html"`
	AISalaryValue     *float64        `json:"ai_salary_value"`
	AISalaryCurrency  string          `json:"ai_salary_currency"`
	AISalaryUnitText  string          `json:"ai_salary_unittext"`
	LocationDerived   []any           `json:"location_derived"`
	LocationsDerived  []any           `json:"locations_derived"`
	EmploymentType    []string        `json:"employment_type"`
	Source            string          `json:"source"`
	JobLocation       string          `json:"job_location"`
	Location          string          `json:"location"`
	AIVisaSponsorship *bool           `json:"ai_visa_sponsorship"`
}

func (p Posting) Salary() *string {
	if p.AISalaryValue == nil {
		return nil
	}
	return domain.Ptr(util.FormatSalary(*p.AISalaryValue, p.AISalaryCurrency, p.AISalaryUnitText))
}

func (p Posting) Snippet() string {
	return util.Snippet(util.FirstNonEmpty(p.DescriptionText, p.DescriptionHTML))
}

// Locations flattens location_derived (falling back to locations_derived).
// Entries are either plain strings or {city, admin, country} objects; objects
// contribute their country.
func (p Posting) Locations() []string {
	src := p.LocationDerived
	if len(src) == 0 {
		src = p.LocationsDerived
	}
	var out []string
	for _, l := range src {
		switch t := l.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, s)
			}
		case map[string]any:
			if c := util.String(t, "country"); c != "" {
				out = append(out, c)
			} else {
				out = append(out, "Unknown")
			}
		}
	}
	return out
}

// InUS reports whether any derived location is the United States.
func (p Posting) InUS() bool {
	for _, src := range [][]any{p.LocationDerived, p.LocationsDerived} {
		b, err := json.Marshal(src)
		if err != nil {
			continue
		}
		s := strings.ToLower(string(b))
		if strings.Contains(s, "united states") || strings.Contains(s, `"country":"us"`) {
			return true
		}
	}
	return false
}

func (p Posting) FirstEmploymentType(def string) *string {
	if len(p.EmploymentType) > 0 && strings.TrimSpace(p.EmploymentType[0]) != "" {
		return domain.Ptr(p.EmploymentType[0])
	}
	return domain.Ptr(def)
}

// Valid reports whether the posting has what a Job needs.
func (p Posting) Valid() bool {
	return strings.TrimSpace(p.Title) != "" && strings.TrimSpace(p.Organization) != "" && p.URL != ""
}

// Job fills the fields every feed in the family maps the same way. Callers
// set Location, JobType and Tags.
func (p Posting) Job(prefix, source string, now time.Time) domain.Job {
	return domain.Job{
		ID:                 prefix + p.ID.String(),
		Title:              strings.TrimSpace(p.Title),
		Company:            strings.TrimSpace(p.Organization),
		Category:           domain.ListCategory(nil),
		Salary:             p.Salary(),
		DescriptionSnippet: p.Snippet(),
		Source:             source,
		SourceURL:          p.URL,
		ApplyURL:           p.URL,
		PublishedAt:        util.PublishedAt(p.DatePosted, now),
		CompanyLogo:        domain.Ptr(p.OrganizationLogo),
	}
}
