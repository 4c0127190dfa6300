// Package himalayas reads the Himalayas public jobs API. The payload has
// shipped with both snake_case and camelCase keys, so records are read
// loosely.
package himalayas

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/scrape/fetch"
	"onlyremote-engine/internal/scrape/types"
	"onlyremote-engine/internal/scrape/util"
)

const (
	Name   = "himalayas"
	prefix = "himalayas-"
)

var slugRe = regexp.MustCompile(`[^a-z0-9]`)

type response struct {
	Jobs []map[string]any `json:"jobs"`
}

type Scraper struct {
	cfg    types.Config
	client *fetch.Client
	now    func() time.Time
}

func New(cfg types.Config, client *fetch.Client) *Scraper {
	return &Scraper{
		cfg:    cfg.WithDefaults("https://himalayas.app/jobs/api", 100, time.Hour),
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
	for _, m := range res.Jobs {
		if j, ok := toJob(m, now); ok {
			out = append(out, j)
		}
	}
	return out, nil
}

func toJob(m map[string]any, now time.Time) (domain.Job, bool) {
	title := util.String(m, "title")
	company := util.String(m, "company_name", "companyName")
	if title == "" || company == "" {
		return domain.Job{}, false
	}

	slug := util.String(m, "slug")
	id := util.FirstNonEmpty(util.String(m, "id", "guid"), slug)
	link := util.String(m, "application_url", "applicationLink", "url")
	if link == "" {
		companySlug := slugRe.ReplaceAllString(strings.ToLower(company), "-")
		link = "https://himalayas.app/companies/" + companySlug + "/jobs/" + util.FirstNonEmpty(slug, id)
	}
	if id == "" {
		id = link
	}

	category := domain.SingleCategory(util.String(m, "category"))
	if cats := util.StringSlice(m, "categories"); len(cats) > 0 && category.String() == "" {
		category = domain.ListCategory(cats)
	}

	location := util.String(m, "location")
	if location == "" {
		location = strings.Join(util.StringSlice(m, "locationRestrictions", "location_restrictions"), ", ")
	}

	salary := util.String(m, "salary_range")
	if salary == "" {
		if lo, ok := util.Float(m, "minSalary", "min_salary"); ok {
			hi, _ := util.Float(m, "maxSalary", "max_salary")
			salary = util.SalaryRange(lo, hi)
		}
	}

	return domain.Job{
		ID:                 prefix + id,
		Title:              title,
		Company:            company,
		Location:           util.LocationOrRemote(location),
		Category:           category,
		JobType:            domain.Ptr(util.String(m, "employment_type", "employmentType")),
		Salary:             domain.Ptr(salary),
		Tags:               util.StringSlice(m, "keywords", "tags"),
		DescriptionSnippet: util.Snippet(util.String(m, "description", "excerpt")),
		Source:             Name,
		SourceURL:          link,
		ApplyURL:           link,
		PublishedAt:        util.PublishedAt(firstPresent(m, "pub_date", "pubDate"), now),
		CompanyLogo:        domain.Ptr(util.String(m, "company_logo_url", "companyLogo")),
	}, true
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
