// Package ycombinator reads open roles at YC companies.
//
// Budget: about 24 requests a day. The request never carries the user's
// query; every caller shares one "top N remote" URL so the 6h cache almost
// always hits, and the query is applied in memory instead.
package ycombinator

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
	Name    = "ycombinator"
	APIHost = "free-y-combinator-jobs-api.p.rapidapi.com"
	prefix  = "yc-"
)

type Scraper struct {
	cfg    types.Config
	client *fetch.Client
	now    func() time.Time
}

func New(cfg types.Config, client *fetch.Client) *Scraper {
	return &Scraper{
		cfg:    cfg.WithDefaults("https://"+APIHost+"/active-jb-7d", 50, 6*time.Hour),
		client: client,
		now:    time.Now,
	}
}

func (s *Scraper) Name() string               { return Name }
func (s *Scraper) SupportsServerFilter() bool { return false }

func (s *Scraper) URL() string {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(s.cfg.Limit))
	v.Set("offset", "0")
	v.Set("remote", "true")
	return util.BuildURL(s.cfg.BaseURL, v)
}

func (s *Scraper) Fetch(ctx context.Context, q domain.Query) ([]domain.Job, error) {
	if err := rapidapi.RequireKey(s.cfg); err != nil {
		return nil, err
	}

	var postings []rapidapi.Posting
	err := s.client.GetJSON(ctx, fetch.Request{
		Source: Name,
		URL:    s.URL(),
		Header: rapidapi.Headers(s.cfg.APIKey, APIHost),
		TTL:    s.cfg.TTL,
	}, &postings)
	if err != nil {
		return nil, err
	}

	terms := util.QueryTerms(q.Q)
	locQ := strings.ToLower(strings.TrimSpace(q.Location))
	now := s.now()

	out := make([]domain.Job, 0, len(postings))
	for _, p := range postings {
		if !p.Valid() {
			continue
		}
		if len(terms) > 0 && !util.MatchesAny(terms, p.Title, p.Organization) {
			continue
		}
		loc := location(p)
		if locQ != "" && !strings.Contains(strings.ToLower(loc), locQ) {
			continue
		}

		j := p.Job(prefix, Name, now)
		j.Location = loc
		j.JobType = p.FirstEmploymentType("Full-time")
		j.Tags = append([]string{"Startup", "YCombinator"}, p.EmploymentType...)
		out = append(out, j)
	}
	return out, nil
}

func location(p rapidapi.Posting) string {
	if locs := p.Locations(); len(locs) > 0 {
		return locs[0]
	}
	return util.LocationOrRemote(util.FirstNonEmpty(p.JobLocation, p.Location))
}
