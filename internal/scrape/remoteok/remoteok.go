// Package remoteok reads the public RemoteOK feed. The API requires an
// identifying User-Agent and returns a legal notice as its first element.
package remoteok

import (
	"context"
	"net/url"
	"strings"
	"time"

	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/scrape/fetch"
	"onlyremote-engine/internal/scrape/types"
	"onlyremote-engine/internal/scrape/util"
)

const (
	Name   = "remoteok"
	prefix = "remoteok-"
)

type posting struct {
	ID          util.FlexString `json:"id"`
	Position    string          `json:"position"`
	Company     string          `json:"company"`
	CompanyLogo string          `json:"company_logo"`
	Location    string          `json:"location"`
	Tags        []string        `json:"tags"`
	Description string          `json:"description"`
	Date        any             `json:"date"`
	URL         string          `json:"url"`
	ApplyURL    string          `json:"apply_url"`
	SalaryMin   any             `json:"salary_min"`
	SalaryMax   any             `json:"salary_max"`
}

type Scraper struct {
	cfg    types.Config
	client *fetch.Client
	now    func() time.Time
}

func New(cfg types.Config, client *fetch.Client) *Scraper {
	return &Scraper{
		cfg:    cfg.WithDefaults("https://remoteok.com/api", 0, time.Hour),
		client: client,
		now:    time.Now,
	}
}

func (s *Scraper) Name() string               { return Name }
func (s *Scraper) SupportsServerFilter() bool { return true }

// URL sends the query, or failing that the category, as a single tag.
func (s *Scraper) URL(q domain.Query) string {
	v := url.Values{}
	if tag := util.FirstNonEmpty(q.Q, q.Category); tag != "" {
		v.Set("tag", tag)
	}
	return util.BuildURL(s.cfg.BaseURL, v)
}

func (s *Scraper) Fetch(ctx context.Context, q domain.Query) ([]domain.Job, error) {
	var items []posting
	err := s.client.GetJSON(ctx, fetch.Request{Source: Name, URL: s.URL(q), TTL: s.cfg.TTL}, &items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]domain.Job, 0, len(items))
	for _, p := range items {
		// the metadata element has neither
		if strings.TrimSpace(p.Company) == "" || strings.TrimSpace(p.Position) == "" {
			continue
		}
		category := "Unknown"
		if len(p.Tags) > 0 {
			category = p.Tags[0]
		}
		out = append(out, domain.Job{
			ID:                 prefix + p.ID.String(),
			Title:              strings.TrimSpace(p.Position),
			Company:            strings.TrimSpace(p.Company),
			Location:           util.LocationOrRemote(p.Location),
			Category:           domain.SingleCategory(category),
			Salary:             domain.Ptr(salary(p)),
			Tags:               p.Tags,
			DescriptionSnippet: util.Snippet(p.Description),
			Source:             Name,
			SourceURL:          p.URL,
			ApplyURL:           util.FirstNonEmpty(p.ApplyURL, p.URL),
			PublishedAt:        util.PublishedAt(p.Date, now),
			CompanyLogo:        domain.Ptr(p.CompanyLogo),
		})
	}
	return out, nil
}

func salary(p posting) string {
	lo, _ := util.ToFloat(p.SalaryMin)
	hi, _ := util.ToFloat(p.SalaryMax)
	return util.SalaryRange(lo, hi)
}
