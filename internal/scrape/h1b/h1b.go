// Package h1b scrapes the daily H-1B sponsoring jobs list, a markdown
// README maintained on GitHub. It is not an API: the table layout can change
// without notice, so parsing drops anything it doesn't understand.
//
// The list is regenerated daily; a 48h TTL keeps at most one fetch a day
// per replica without ever showing a stale week.
package h1b

import (
	"context"
	"regexp"
	"strings"
	"time"

	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/scrape/fetch"
	"onlyremote-engine/internal/scrape/types"
	"onlyremote-engine/internal/scrape/util"
)

const (
	Name      = "h1b"
	ReadmeURL = "https://raw.githubusercontent.com/jobright-ai/Daily-H1B-Jobs-In-Tech/master/README.md"

	minColumns = 6
	continued  = "↳"
)

var (
	separatorCell = regexp.MustCompile(`^:?-+:?$`)
	idUnsafe      = regexp.MustCompile(`[^a-z0-9-]`)
	spaces        = regexp.MustCompile(`\s+`)

	categories = []struct{ header, name string }{
		{"### Software Engineer", "Software Engineer"},
		{"### Product Manager", "Product Manager"},
		{"### Marketing", "Marketing"},
		{"### Arts & Design", "Design"},
	}
)

type Scraper struct {
	cfg    types.Config
	client *fetch.Client
	now    func() time.Time
}

func New(cfg types.Config, client *fetch.Client) *Scraper {
	return &Scraper{
		cfg:    cfg.WithDefaults(ReadmeURL, 0, 48*time.Hour),
		client: client,
		now:    time.Now,
	}
}

func (s *Scraper) Name() string               { return Name }
func (s *Scraper) SupportsServerFilter() bool { return false }

func (s *Scraper) Fetch(ctx context.Context, _ domain.Query) ([]domain.Job, error) {
	text, err := s.client.GetText(ctx, fetch.Request{Source: Name, URL: s.cfg.BaseURL, TTL: s.cfg.TTL})
	if err != nil {
		return nil, err
	}
	return Parse(text, s.now()), nil
}

// Parse extracts jobs from the README tables. Header, separator and short
// rows are skipped, as are rows missing a title, company or apply link.
func Parse(text string, now time.Time) []domain.Job {
	var out []domain.Job
	category := "Unknown"
	prevCompany := ""

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))

		for _, c := range categories {
			if strings.Contains(line, c.header) {
				category = c.name
			}
		}
		if !strings.HasPrefix(line, "|") {
			continue
		}

		cells := splitRow(line)
		if len(cells) < minColumns || isSeparator(cells) || isHeader(cells) {
			continue
		}

		company, _ := util.ExtractLink(util.StripBold(cells[0]))
		company = strings.TrimSpace(util.StripBold(company))
		if company == continued {
			company = prevCompany
		}
		title, titleURL := util.ExtractLink(util.StripBold(cells[1]))
		location := util.CleanText(util.StripBold(cells[3]))
		_, applyURL := util.ExtractLink(cells[5])
		if applyURL == "" {
			applyURL = titleURL
		}
		date := ""
		if len(cells) > 6 {
			date = cells[6]
		}

		if company != "" {
			prevCompany = company
		}
		if title == "" || company == "" || applyURL == "" {
			continue
		}

		out = append(out, domain.Job{
			ID:                 jobID(company, title),
			Title:              title,
			Company:            company,
			Location:           util.LocationOrRemote(location),
			Category:           domain.SingleCategory(category),
			JobType:            domain.Ptr("Full-time"),
			Tags:               []string{"H1B", category},
			DescriptionSnippet: "H-1B sponsored role at " + company + ".",
			Source:             Name,
			SourceURL:          applyURL,
			ApplyURL:           applyURL,
			PublishedAt:        domain.FormatTimestamp(parseDate(date, now)),
		})
	}
	return out
}

func splitRow(line string) []string {
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) > 0 && parts[0] == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

func isSeparator(cells []string) bool {
	for _, c := range cells {
		if !separatorCell.MatchString(strings.ReplaceAll(c, " ", "")) {
			return false
		}
	}
	return true
}

func isHeader(cells []string) bool {
	first := strings.TrimSpace(util.StripBold(cells[0]))
	return strings.EqualFold(first, "Company")
}

func jobID(company, title string) string {
	id := "h1b-" + spaces.ReplaceAllString(company, "-") + "-" + spaces.ReplaceAllString(title, "-")
	return idUnsafe.ReplaceAllString(strings.ToLower(id), "")
}

// parseDate handles ISO dates, "Jan 2, 2006" and the year-less "Jan 2" the
// list currently uses. A year-less date that would land in the future is
// taken to be last year's.
func parseDate(s string, now time.Time) time.Time {
	s = util.CleanText(util.StripBold(s))
	if s == "" {
		return now.UTC()
	}
	if t, ok := util.ParseDate(s); ok {
		return t
	}
	for _, layout := range []string{"Jan 2", "January 2", "01/02"} {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		if t.After(now.Add(24 * time.Hour)) {
			t = t.AddDate(-1, 0, 0)
		}
		return t
	}
	return now.UTC()
}
