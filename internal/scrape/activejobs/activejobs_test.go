package activejobs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/scrape/fetch"
	"onlyremote-engine/internal/scrape/types"
)

func TestMissingKey(t *testing.T) {
	s := New(types.Config{}, fetch.New(fetch.Options{}))
	_, err := s.Fetch(context.Background(), domain.Query{Q: "go"})
	assert.ErrorIs(t, err, types.ErrMissingCredentials)
}

func TestURLUsesAdvancedFilterForDisjunction(t *testing.T) {
	s := New(types.Config{BaseURL: "https://feed.test/active-ats-7d"}, nil)
	u, err := url.Parse(s.URL(domain.Query{Q: `"Backend Engineer" OR Golang`, Location: "United States"}))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "('Backend Engineer' | Golang)", q.Get("advanced_title_filter"))
	assert.Empty(t, q.Get("title_filter"))
	assert.Equal(t, "United States", q.Get("location_filter"))
	assert.Equal(t, "adp,greenhouse,workable", q.Get("source"))
	assert.Equal(t, "50", q.Get("limit"))
	assert.True(t, s.SupportsDisjunction())
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, APIHost, r.Header.Get("x-rapidapi-host"))
		assert.Equal(t, "golang", r.URL.Query().Get("title_filter"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"1","title":"Go Dev","organization":"Acme","url":"https://boards.greenhouse.io/acme/1",
			 "date_posted":"2025-10-10T00:00:00","location_derived":["Berlin, Germany","Remote"],
			 "employment_type":["CONTRACTOR"],"ai_salary_value":80,"ai_salary_currency":"EUR","ai_salary_unittext":"HOUR"},
			{"id":"2","title":"","organization":"x","url":"y"}
		]`))
	}))
	defer srv.Close()

	s := New(types.Config{BaseURL: srv.URL, APIKey: "secret"}, fetch.New(fetch.Options{}))
	jobs, err := s.Fetch(context.Background(), domain.Query{Q: "golang"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	j := jobs[0]
	assert.Equal(t, "fj-1", j.ID)
	assert.Equal(t, Name, j.Source)
	assert.Equal(t, "Berlin, Germany", j.Location)
	assert.Equal(t, "CONTRACTOR", *j.JobType)
	assert.Equal(t, []string{"CONTRACTOR"}, j.Tags)
	assert.Equal(t, "EUR 80 HOUR", *j.Salary)
}

func TestFetchNotArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"You are not subscribed to this API."}`))
	}))
	defer srv.Close()

	s := New(types.Config{BaseURL: srv.URL, APIKey: "k"}, fetch.New(fetch.Options{}))
	_, err := s.Fetch(context.Background(), domain.Query{})
	require.Error(t, err)
}

func TestIDPrefixDistinctFromInternFeed(t *testing.T) {
	// active-intern IDs must never look like ours, or dedupe would merge them.
	assert.False(t, strings.HasPrefix("active-intern-1", prefix))
	assert.False(t, strings.HasPrefix(prefix+"1", "active-intern-"))
}
