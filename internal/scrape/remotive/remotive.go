// Package remotive reads the public Remotive API. No key, no published
// quota; responses are cached briefly to stay polite.
package remotive

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/scrape/fetch"
	"onlyremote-engine/internal/scrape/types"
	"onlyremote-engine/internal/scrape/util"
)

const (
	Name   = "remotive"
	prefix = "remotive-"
)

type posting struct {
	ID                        util.FlexString `json:"id"`
	URL                       string          `json:"url"`
	Title                     string          `json:"title"`
	CompanyName               string          `json:"company_name"`
	CompanyLogoURL            string          `json:"company_logo_url"`
	CompanyLogo               string          `json:"company_logo"`
	Category                  string          `json:"category"`
	Tags                      []string        `json:"tags"`
	JobType                   string          `json:"job_type"`
	PublicationDate           any             `json:"publication_date"`
	CandidateRequiredLocation string          `json:"candidate_required_location"`
	Salary                    string          `json:"salary"`
	Description               string          `json:"description"`
}

type response struct {
	Jobs []posting `json:"jobs"`
}

type Scraper struct {
	cfg    types.Config
	client *fetch.Client
	now    func() time.Time
}

func New(cfg types.Config, client *fetch.Client) *Scraper {
	return &Scraper{
		cfg:    cfg.WithDefaults("https://remotive.com/api/remote-jobs", 100, 10*time.Minute),
		client: client,
		now:    time.Now,
	}
}

func (s *Scraper) Name() string               { return Name }
func (s *Scraper) SupportsServerFilter() bool { return true }

func (s *Scraper) URL(q domain.Query) string {
	v := url.Values{}
	if t := strings.TrimSpace(q.Q); t != "" {
		v.Set("search", t)
	}
	if c := strings.TrimSpace(q.Category); c != "" {
		v.Set("category", c)
	}
	v.Set("limit", strconv.Itoa(s.cfg.Limit))
	return util.BuildURL(s.cfg.BaseURL, v)
}

func (s *Scraper) Fetch(ctx context.Context, q domain.Query) ([]domain.Job, error) {
	var res response
	err := s.client.GetJSON(ctx, fetch.Request{Source: Name, URL: s.URL(q), TTL: s.cfg.TTL}, &res)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]domain.Job, 0, len(res.Jobs))
	for _, p := range res.Jobs {
		if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.CompanyName) == "" {
			continue
		}
		out = append(out, domain.Job{
			ID:                 prefix + p.ID.String(),
			Title:              strings.TrimSpace(p.Title),
			Company:            strings.TrimSpace(p.CompanyName),
			Location:           util.LocationOrRemote(p.CandidateRequiredLocation),
			Category:           domain.SingleCategory(p.Category),
			JobType:            domain.Ptr(p.JobType),
			Salary:             domain.Ptr(strings.TrimSpace(p.Salary)),
			Tags:               p.Tags,
			DescriptionSnippet: util.Snippet(p.Description),
			Source:             Name,
			SourceURL:          p.URL,
			ApplyURL:           p.URL,
			PublishedAt:        util.PublishedAt(p.PublicationDate, now),
			CompanyLogo:        domain.Ptr(util.FirstNonEmpty(p.CompanyLogoURL, p.CompanyLogo)),
		})
	}
	return out, nil
}
