// Package activeintern reads remote US internships from the internships
// feed. Workday-hosted postings are dropped; their apply flow doesn't work
// for remote candidates often enough to be worth listing.
//
// Budget: about 200 requests a month, so responses live for 4h.
package activeintern

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/scrape/fetch"
	"onlyremote-engine/internal/scrape/rapidapi"
	"onlyremote-engine/internal/scrape/types"
	"onlyremote-engine/internal/scrape/util"
)

const (
	Name    = "active-intern"
	APIHost = "internships-api.p.rapidapi.com"
	prefix  = "active-intern-"
)

type Scraper struct {
	cfg    types.Config
	client *fetch.Client
	now    func() time.Time
}

func New(cfg types.Config, client *fetch.Client) *Scraper {
	return &Scraper{
		cfg:    cfg.WithDefaults("https://"+APIHost+"/active-ats-7d", 50, 4*time.Hour),
		client: client,
		now:    time.Now,
	}
}

func (s *Scraper) Name() string               { return Name }
func (s *Scraper) SupportsServerFilter() bool { return true }
func (s *Scraper) SupportsDisjunction() bool  { return true }

func (s *Scraper) URL(q domain.Query) string {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(s.cfg.Limit))
	v.Set("offset", "0")
	v.Set("remote", "true")
	v.Set("description_type", "text")
	v.Set("include_ai", "true")
	v.Set("ai_work_arrangement_filter", "Remote OK,Remote Solely")
	v.Set("location_filter", "United States")
	rapidapi.SetTitleFilter(v, q.Q)
	return util.BuildURL(s.cfg.BaseURL, v)
}

func (s *Scraper) Fetch(ctx context.Context, q domain.Query) ([]domain.Job, error) {
	if err := rapidapi.RequireKey(s.cfg); err != nil {
		return nil, err
	}

	var postings []rapidapi.Posting
	err := s.client.GetJSON(ctx, fetch.Request{
		Source: Name,
		URL:    s.URL(q),
		Header: rapidapi.Headers(s.cfg.APIKey, APIHost),
		TTL:    s.cfg.TTL,
	}, &postings)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]domain.Job, 0, len(postings))
	for _, p := range postings {
		if !p.Valid() || isWorkday(p) {
			continue
		}
		j := p.Job(prefix, Name, now)
		j.Location = "Remote"
		if locs := p.Locations(); len(locs) > 0 {
			j.Location = locs[0]
		}
		j.JobType = domain.Ptr("Internship")
		j.Tags = append(append([]string{}, p.EmploymentType...), "Internship")
		out = append(out, j)
	}
	return out, nil
}

func isWorkday(p rapidapi.Posting) bool {
	return strings.Contains(strings.ToLower(p.Source), "workday") ||
		strings.Contains(p.URL, "myworkdayjobs.com")
}
