// Package openwebninja reads the OpenWeb Ninja remote jobs endpoint.
package openwebninja

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
	Name   = "openwebninja"
	prefix = "own-"
)

type posting struct {
	ID          util.FlexString `json:"id"`
	Title       string          `json:"title"`
	Company     string          `json:"company"`
	Location    string          `json:"location"`
	Category    string          `json:"category"`
	Type        string          `json:"type"`
	Salary      string          `json:"salary"`
	Tags        []string        `json:"tags"`
	Description string          `json:"description"`
	URL         string          `json:"url"`
	ApplyURL    string          `json:"apply_url"`
	PostedAt    any             `json:"posted_at"`
	Logo        string          `json:"logo"`
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
		cfg:    cfg.WithDefaults("https://www.openwebninja.com/api/remote-jobs", 100, 10*time.Minute),
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
		if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Company) == "" {
			continue
		}
		out = append(out, domain.Job{
			ID:                 prefix + p.ID.String(),
			Title:              strings.TrimSpace(p.Title),
			Company:            strings.TrimSpace(p.Company),
			Location:           util.LocationOrRemote(p.Location),
			Category:           domain.SingleCategory(p.Category),
			JobType:            domain.Ptr(p.Type),
			Salary:             domain.Ptr(strings.TrimSpace(p.Salary)),
			Tags:               p.Tags,
			DescriptionSnippet: util.Snippet(p.Description),
			Source:             Name,
			SourceURL:          p.URL,
			ApplyURL:           util.FirstNonEmpty(p.ApplyURL, p.URL),
			PublishedAt:        util.PublishedAt(p.PostedAt, now),
			CompanyLogo:        domain.Ptr(p.Logo),
		})
	}
	return out, nil
}
