// Package sponsorship reads remote postings whose description indicates
// visa sponsorship. US roles are tagged H1B, everything else Global
// Sponsorship, which is what the job type filter keys on.
//
// Budget: 5 requests a month. Keep the TTL at a week unless the plan changes.
package sponsorship

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
	Name    = "job-feed-sponsorship"
	APIHost = "job-posting-feed-api.p.rapidapi.com"
	prefix  = "sponsor-"

	TagVisa   = "Visa Sponsorship"
	TagH1B    = "H1B"
	TagGlobal = "Global Sponsorship"
)

type Scraper struct {
	cfg    types.Config
	client *fetch.Client
	now    func() time.Time
}

func New(cfg types.Config, client *fetch.Client) *Scraper {
	return &Scraper{
		cfg:    cfg.WithDefaults("https://"+APIHost+"/active-ats-6m", 500, 7*24*time.Hour),
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
	v.Set("ai_visa_sponsorship_filter", "true")
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
		j.Location = util.LocationOrRemote(strings.Join(p.Locations(), ", "))
		j.JobType = p.FirstEmploymentType("Full-time")
		j.Tags = Tags(p)
		out = append(out, j)
	}
	return out, nil
}

func Tags(p rapidapi.Posting) []string {
	tags := []string{TagVisa}
	if p.InUS() {
		tags = append(tags, TagH1B)
	} else {
		tags = append(tags, TagGlobal)
	}
	return append(tags, p.EmploymentType...)
}
