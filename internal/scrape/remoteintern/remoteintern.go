// Package remoteintern reads US internships from the remote-jobs feed.
//
// Budget: about 25 requests a month. The query is never sent upstream;
// every caller shares one URL cached for 24h and the aggregator filters.
// Postings hosted on SmartRecruiters are dropped.
package remoteintern

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
	Name    = "remote-intern"
	APIHost = "remote-jobs1.p.rapidapi.com"
	prefix  = "intern-"
)

type company struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
}

type posting struct {
	ID              util.FlexString `json:"id"`
	Title           string          `json:"title"`
	URL             string          `json:"url"`
	Description     string          `json:"description"`
	DatePosted      any             `json:"datePosted"`
	EmploymentTypes []string        `json:"employmentTypes"`
	Categories      []string        `json:"categories"`
	Company         *company        `json:"company"`
	LocationTypes   []string        `json:"locationTypes"`
	Countries       []string        `json:"countries"`
}

type response struct {
	Data []posting `json:"data"`
}

type Scraper struct {
	cfg    types.Config
	client *fetch.Client
	now    func() time.Time
}

func New(cfg types.Config, client *fetch.Client) *Scraper {
	return &Scraper{
		cfg:    cfg.WithDefaults("https://"+APIHost+"/jobs", 100, 24*time.Hour),
		client: client,
		now:    time.Now,
	}
}

func (s *Scraper) Name() string               { return Name }
func (s *Scraper) SupportsServerFilter() bool { return false }

func (s *Scraper) URL() string {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(s.cfg.Limit))
	v.Set("include_total_count", "false")
	v.Set("include_company", "true")
	v.Set("country", "us")
	v.Set("employment_type", "internship")
	return util.BuildURL(s.cfg.BaseURL, v)
}

func (s *Scraper) Fetch(ctx context.Context, _ domain.Query) ([]domain.Job, error) {
	if err := rapidapi.RequireKey(s.cfg); err != nil {
		return nil, err
	}

	var res response
	err := s.client.GetJSON(ctx, fetch.Request{
		Source: Name,
		URL:    s.URL(),
		Header: rapidapi.Headers(s.cfg.APIKey, APIHost),
		TTL:    s.cfg.TTL,
	}, &res)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]domain.Job, 0, len(res.Data))
	for _, p := range res.Data {
		if isSmartRecruiters(p) || strings.TrimSpace(p.Title) == "" || p.URL == "" {
			continue
		}
		companyName, logo := "Unknown", ""
		if p.Company != nil {
			companyName = util.FirstNonEmpty(p.Company.Name, "Unknown")
			logo = p.Company.Logo
		}
		loc := append(append([]string{}, p.LocationTypes...), p.Countries...)

		out = append(out, domain.Job{
			ID:                 prefix + p.ID.String(),
			Title:              strings.TrimSpace(p.Title),
			Company:            companyName,
			Location:           util.LocationOrRemote(strings.Join(loc, ", ")),
			Category:           domain.ListCategory(p.Categories),
			JobType:            domain.Ptr("Internship"),
			Tags:               append(append([]string{}, p.Categories...), "Internship"),
			DescriptionSnippet: util.Snippet(p.Description),
			Source:             Name,
			SourceURL:          p.URL,
			ApplyURL:           p.URL,
			PublishedAt:        util.PublishedAt(p.DatePosted, now),
			CompanyLogo:        domain.Ptr(logo),
		})
	}
	return out, nil
}

func isSmartRecruiters(p posting) bool {
	if strings.Contains(p.URL, "smartrecruiters") {
		return true
	}
	return p.Company != nil && strings.Contains(strings.ToLower(p.Company.Name), "smartrecruiters")
}
