package rapidapi

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onlyremote-engine/internal/scrape/types"
)

func TestAdvancedTitleFilter(t *testing.T) {
	assert.Equal(t, "('Software Engineer' | Golang)", AdvancedTitleFilter(`"Software Engineer" OR Golang`))
}

func TestSetTitleFilter(t *testing.T) {
	v := url.Values{}
	SetTitleFilter(v, "golang")
	assert.Equal(t, "golang", v.Get("title_filter"))
	assert.Empty(t, v.Get("advanced_title_filter"))

	v = url.Values{}
	SetTitleFilter(v, `"Data Engineer" OR Analyst`)
	assert.Equal(t, "('Data Engineer' | Analyst)", v.Get("advanced_title_filter"))
	assert.Empty(t, v.Get("title_filter"))

	v = url.Values{}
	SetTitleFilter(v, "  ")
	assert.Empty(t, v)
}

func TestRequireKey(t *testing.T) {
	assert.ErrorIs(t, RequireKey(types.Config{}), types.ErrMissingCredentials)
	assert.NoError(t, RequireKey(types.Config{APIKey: "k"}))
}

func TestHeaders(t *testing.T) {
	h := Headers("k", "active-jobs-db.p.rapidapi.com")
	assert.Equal(t, "k", h.Get("x-rapidapi-key"))
	assert.Equal(t, "active-jobs-db.p.rapidapi.com", h.Get("x-rapidapi-host"))
}

func TestPostingMapping(t *testing.T) {
	raw := `{
		"id": 12345,
		"title": "Go Engineer",
		"organization": "Acme",
		"organization_logo": "https://logo.example/acme.png",
		"date_posted": "2025-09-01T10:00:00",
		"url": "https://acme.example/jobs/1",
		"description_text": "Build <b>things</b>",
		"ai_salary_value": 145000,
		"ai_salary_currency": "USD",
		"ai_salary_unittext": "YEAR",
		"location_derived": ["Austin, Texas, United States", {"city": "Toronto", "country": "Canada"}, {"city": "x"}],
		"employment_type": ["FULL_TIME"]
	}`
	var p Posting
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	require.True(t, p.Valid())

	now := time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)
	j := p.Job("fj-", "fantastic-jobs", now)
	assert.Equal(t, "fj-12345", j.ID)
	assert.Equal(t, "Acme", j.Company)
	assert.Equal(t, "2025-09-01T10:00:00Z", j.PublishedAt)
	require.NotNil(t, j.Salary)
	assert.Equal(t, "USD 145,000 YEAR", *j.Salary)
	require.NotNil(t, j.CompanyLogo)
	assert.Equal(t, "Build things", j.DescriptionSnippet)
	assert.True(t, j.Category.List)

	assert.Equal(t, []string{"Austin, Texas, United States", "Canada", "Unknown"}, p.Locations())
	assert.True(t, p.InUS())
	assert.Equal(t, "FULL_TIME", *p.FirstEmploymentType("Full-time"))
}

func TestPostingWithoutSalaryOrUS(t *testing.T) {
	var p Posting
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","title":"t","organization":"o","url":"u","locations_derived":[{"country":"DE"}]}`), &p))
	assert.Nil(t, p.Salary())
	assert.False(t, p.InUS())
	assert.Equal(t, []string{"DE"}, p.Locations())
	assert.Equal(t, "Full-time", *p.FirstEmploymentType("Full-time"))

	p = Posting{}
	assert.False(t, p.Valid())

	require.NoError(t, json.Unmarshal([]byte(`{"locations_derived":[{"country":"US"}]}`), &p))
	assert.True(t, p.InUS())
}
