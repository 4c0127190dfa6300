// Package activejobs reads the Active Jobs DB feed (surfaced to users as
// "fantastic-jobs"): recent ATS postings from a fixed set of ATS vendors.
//
// Budget: roughly 25 requests a month on the current plan, hence the 24h TTL.
package activejobs

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
	Name    = "fantastic-jobs"
	APIHost = "active-jobs-db.p.rapidapi.com"
	prefix  = "fj-"
)

type Scraper struct {
	cfg    types.Config
	client *fetch.Client
	now    func() time.Time
}

func New(cfg types.Config, client *fetch.Client) *Scraper {
	return &Scraper{
		cfg:    cfg.WithDefaults("https://"+APIHost+"/active-ats-7d", 50, 24*time.Hour),
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
	v.Set("source", "adp,greenhouse,workable")
	rapidapi.SetTitleFilter(v, q.Q)
	if loc := strings.TrimSpace(q.Location); loc != "" {
		v.Set("location_filter", loc)
	}
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
		if !p.Valid() {
			continue
		}
		j := p.Job(prefix, Name, now)
		locs := p.Locations()
		j.Location = "Remote"
		if len(locs) > 0 {
			j.Location = locs[0]
		}
		j.JobType = p.FirstEmploymentType("Full-time")
		j.Tags = append([]string{}, p.EmploymentType...)
		out = append(out, j)
	}
	return out, nil
}
