package remotive

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

const payload = `{"job-count": 2, "jobs": [
  {"id": 1907161, "url": "https://remotive.com/remote-jobs/software-dev/go-1907161",
   "title": "Senior Go Developer", "company_name": "Acme", "company_logo_url": "https://remotive.com/logo/acme.png",
   "category": "Software Development", "tags": ["go", "aws"], "job_type": "full_time",
   "publication_date": "2025-10-01T12:30:00", "candidate_required_location": "Worldwide",
   "salary": "$120k - $150k", "description": "<p>Write <strong>Go</strong> &amp; ship.</p>"},
  {"id": 2, "title": "", "company_name": "NoTitle"}
]}`

func TestFetchMapsJobs(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	s := New(types.Config{BaseURL: srv.URL, Limit: 20}, fetch.New(fetch.Options{}))
	jobs, err := s.Fetch(context.Background(), domain.Query{Q: "golang", Category: "software-dev"})
	require.NoError(t, err)
	assert.Equal(t, "category=software-dev&limit=20&search=golang", gotQuery)

	require.Len(t, jobs, 1)
	j := jobs[0]
	assert.Equal(t, "remotive-1907161", j.ID)
	assert.Equal(t, "Acme", j.Company)
	assert.Equal(t, "Worldwide", j.Location)
	assert.Equal(t, "Software Development", j.Category.String())
	assert.Equal(t, "full_time", *j.JobType)
	assert.Equal(t, "$120k - $150k", *j.Salary)
	assert.Equal(t, "Write Go & ship.", j.DescriptionSnippet)
	assert.Equal(t, "2025-10-01T12:30:00Z", j.PublishedAt)
	assert.Equal(t, j.SourceURL, j.ApplyURL)
	assert.Equal(t, "https://remotive.com/logo/acme.png", *j.CompanyLogo)
}

func TestFetchNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	s := New(types.Config{BaseURL: srv.URL}, fetch.New(fetch.Options{}))
	_, err := s.Fetch(context.Background(), domain.Query{})
	assert.ErrorIs(t, err, fetch.ErrContentType)
}

func TestDefaults(t *testing.T) {
	s := New(types.Config{}, fetch.New(fetch.Options{}))
	assert.Equal(t, 10*time.Minute, s.cfg.TTL)
	assert.Equal(t, "https://remotive.com/api/remote-jobs?limit=100", s.URL(domain.Query{}))
	assert.True(t, s.SupportsServerFilter())
}
