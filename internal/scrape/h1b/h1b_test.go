package h1b

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/scrape/fetch"
	"onlyremote-engine/internal/scrape/types"
)

var now = time.Date(2025, 11, 3, 15, 0, 0, 0, time.UTC)

const fixture = `# Daily H1B Jobs In Tech

### Software Engineer

| Company | Job Title | Level | Location | H1B status | Apply | Date Posted |
| ------- | --------- | ----- | -------- | ---------- | ----- | ----------- |
| **[Stripe](https://stripe.com)** | **[Backend Engineer](https://jobs.example/stripe-title)** | Mid | Remote, US | 🏅 | [apply](https://jobs.example/stripe) | 2025-10-30 |
| ↳ | Platform Engineer | Senior | Seattle, WA | 🏅 | [apply](https://jobs.example/stripe-2) | Oct 27 |
| **Acme** | Data Engineer | Entry | | 🏅 | <a href="https://jobs.example/acme"><img src="apply.png" alt="Apply"></a> | not a date |
| Broken | Row | Only |
| NoLink Inc | Engineer | Mid | Remote | 🏅 | apply here | 2025-10-30 |
|  | Orphan Title | Mid | Remote | 🏅 | [apply](https://jobs.example/orphan) | 2025-10-30 |

### Product Manager

|Company|Job Title|Level|Location|H1B status|Apply|
|:--|:--|:--|:--|:--|:--|
| [Globex](https://globex.example) | [Product Manager, Growth](https://jobs.example/globex) | Senior | New York, NY | 🏅 | | 
`

func TestParseFixture(t *testing.T) {
	jobs := Parse(fixture, now)
	require.Len(t, jobs, 4)

	stripe := jobs[0]
	assert.Equal(t, "h1b-stripe-backend-engineer", stripe.ID)
	assert.Equal(t, "Stripe", stripe.Company)
	assert.Equal(t, "Backend Engineer", stripe.Title)
	assert.Equal(t, "Remote, US", stripe.Location)
	assert.Equal(t, "https://jobs.example/stripe", stripe.ApplyURL)
	assert.Equal(t, "2025-10-30T00:00:00Z", stripe.PublishedAt)
	assert.Equal(t, []string{"H1B", "Software Engineer"}, stripe.Tags)
	assert.Equal(t, "H-1B sponsored role at Stripe.", stripe.DescriptionSnippet)
	require.NotNil(t, stripe.JobType)
	assert.Equal(t, "Full-time", *stripe.JobType)
	assert.Equal(t, Name, stripe.Source)

	cont := jobs[1]
	assert.Equal(t, "Stripe", cont.Company)
	assert.Equal(t, "2025-10-27T00:00:00Z", cont.PublishedAt)

	acme := jobs[2]
	assert.Equal(t, "https://jobs.example/acme", acme.ApplyURL)
	assert.Equal(t, "Remote", acme.Location)
	assert.Equal(t, "2025-11-03T15:00:00Z", acme.PublishedAt, "unparseable date falls back to now")

	globex := jobs[3]
	assert.Equal(t, "Product Manager", globex.Category.String())
	assert.Equal(t, "https://jobs.example/globex", globex.ApplyURL, "title link used when apply cell is empty")
	assert.Equal(t, "h1b-globex-product-manager-growth", globex.ID)
	assert.Equal(t, "2025-11-03T15:00:00Z", globex.PublishedAt)
}

func TestParseToleratesGarbage(t *testing.T) {
	assert.Empty(t, Parse("", now))
	assert.Empty(t, Parse("no tables here\n| just | one |\n|---|---|", now))
	assert.Empty(t, Parse("| a | b | c | d | e |", now))
}

func TestParseDateYearRollover(t *testing.T) {
	jan := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 12, 30, 0, 0, 0, 0, time.UTC), parseDate("Dec 30", jan))
	assert.Equal(t, time.Date(2025, 10, 27, 0, 0, 0, 0, time.UTC), parseDate("Oct 27, 2025", jan))
}

func TestJobIDSanitized(t *testing.T) {
	assert.Equal(t, "h1b-att-labs-sr-engineer-go", jobID("AT&T  Labs", "Sr. Engineer (Go)"))
}

func TestFetchUsesConfiguredURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(fixture))
	}))
	defer srv.Close()

	s := New(types.Config{BaseURL: srv.URL}, fetch.New(fetch.Options{}))
	s.now = func() time.Time { return now }
	jobs, err := s.Fetch(context.Background(), domain.Query{})
	require.NoError(t, err)
	assert.Len(t, jobs, 4)
	assert.False(t, s.SupportsServerFilter())
}

func TestFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := New(types.Config{BaseURL: srv.URL}, fetch.New(fetch.Options{}))
	_, err := s.Fetch(context.Background(), domain.Query{})
	require.Error(t, err)
}
