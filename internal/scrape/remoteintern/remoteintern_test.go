package remoteintern

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/scrape/fetch"
	"onlyremote-engine/internal/scrape/types"
)

func TestFetchIgnoresQueryAndDropsSmartRecruiters(t *testing.T) {
	var urls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		urls = append(urls, r.URL.String())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total_count":3,"data":[
			{"id":101,"title":"Marketing Intern","url":"https://jobs.example/101","description":"<p>Help us grow</p>",
			 "datePosted":"2025-09-20","employmentTypes":["Internship"],"categories":["Marketing"],
			 "company":{"name":"Acme","logo":"https://logo/acme"},"locationTypes":["Remote"],"countries":["US"]},
			{"id":102,"title":"Ops Intern","url":"https://jobs.smartrecruiters.com/x/102","company":{"name":"Y"}},
			{"id":103,"title":"Eng Intern","url":"https://jobs.example/103","company":{"name":"SmartRecruiters Inc"}},
			{"id":104,"title":"Anon Intern","url":"https://jobs.example/104"}
		]}`))
	}))
	defer srv.Close()

	s := New(types.Config{BaseURL: srv.URL, APIKey: "k"}, fetch.New(fetch.Options{}))
	jobs, err := s.Fetch(context.Background(), domain.Query{Q: "marketing"})
	require.NoError(t, err)
	_, err = s.Fetch(context.Background(), domain.Query{Q: "design"})
	require.NoError(t, err)

	assert.Len(t, urls, 1, "query-independent url is served from cache")
	assert.NotContains(t, urls[0], "marketing")
	assert.False(t, s.SupportsServerFilter())

	require.Len(t, jobs, 2)
	j := jobs[0]
	assert.Equal(t, "intern-101", j.ID)
	assert.Equal(t, "Remote, US", j.Location)
	assert.Equal(t, []string{"Marketing", "Internship"}, j.Tags)
	assert.Equal(t, []string{"Marketing"}, j.Category.Values)
	assert.Equal(t, "Help us grow", j.DescriptionSnippet)
	assert.Equal(t, "Internship", *j.JobType)

	anon := jobs[1]
	assert.Equal(t, "Unknown", anon.Company)
	assert.Equal(t, "Remote", anon.Location)
	assert.Nil(t, anon.CompanyLogo)
}
