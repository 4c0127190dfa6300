package himalayas

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

const payload = `{"jobs": [
  {"title": "Staff Engineer", "companyName": "Hooli", "guid": "hooli-staff",
   "applicationLink": "https://himalayas.app/companies/hooli/jobs/staff",
   "employmentType": "Full Time", "minSalary": 150000, "maxSalary": 190000,
   "locationRestrictions": ["United States", "Canada"], "categories": ["Engineering", "Backend"],
   "pubDate": 1727740800, "excerpt": "Scale things", "companyLogo": "https://cdn.example/hooli.png"},
  {"id": 7, "slug": "designer", "title": "Designer", "company_name": "Pied Piper",
   "category": "Design", "keywords": ["figma"], "salary_range": "$80k", "pub_date": "2025-01-05"},
  {"title": "No Company"}
]}`

func TestFetchLooseKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "design", r.URL.Query().Get("search"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	s := New(types.Config{BaseURL: srv.URL}, fetch.New(fetch.Options{}))
	s.now = func() time.Time { return time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC) }
	jobs, err := s.Fetch(context.Background(), domain.Query{Q: "design"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	camel := jobs[0]
	assert.Equal(t, "himalayas-hooli-staff", camel.ID)
	assert.Equal(t, "Hooli", camel.Company)
	assert.Equal(t, "United States, Canada", camel.Location)
	assert.Equal(t, []string{"Engineering", "Backend"}, camel.Category.Values)
	assert.True(t, camel.Category.List)
	assert.Equal(t, "$150000 - $190000", *camel.Salary)
	assert.Equal(t, "Full Time", *camel.JobType)
	assert.Equal(t, "2024-10-01T00:00:00Z", camel.PublishedAt)
	assert.Equal(t, "https://himalayas.app/companies/hooli/jobs/staff", camel.ApplyURL)

	snake := jobs[1]
	assert.Equal(t, "himalayas-7", snake.ID)
	assert.Equal(t, "Remote", snake.Location)
	assert.Equal(t, "Design", snake.Category.String())
	assert.Equal(t, []string{"figma"}, snake.Tags)
	assert.Equal(t, "https://himalayas.app/companies/pied-piper/jobs/designer", snake.ApplyURL)
	assert.Nil(t, snake.JobType)
}
