package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobJSONShape(t *testing.T) {
	j := Job{
		ID:       "remotive-1",
		Title:    "Go Engineer",
		Company:  "Acme",
		Category: SingleCategory("Software Development"),
		Salary:   Ptr("$100k"),
	}
	b, err := json.Marshal(j)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "Software Development", m["category"])
	assert.Equal(t, "$100k", m["salary"])
	assert.Nil(t, m["job_type"])
	assert.Nil(t, m["company_logo"])
	assert.Equal(t, []any{}, m["tags"])
}

func TestCategoryListRoundTrip(t *testing.T) {
	j := Job{ID: "x", Category: ListCategory([]string{"Engineering", "Data"})}
	b, err := json.Marshal(j)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"category":["Engineering","Data"]`)

	var back Job
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Category.List)
	assert.Equal(t, "Engineering", back.Category.String())
}

func TestParseTimestampFallback(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now, ParseTimestamp("not a date", now))
	assert.Equal(t, now, ParseTimestamp("", now))
	assert.Equal(t, time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), ParseTimestamp("2025-04-30", now))
	assert.Equal(t, "2025-05-01T12:00:00Z", FormatTimestamp(now))
}

func TestQueryWantsH1B(t *testing.T) {
	assert.True(t, Query{H1B: true}.WantsH1B())
	assert.True(t, Query{JobType: "H1B"}.WantsH1B())
	assert.False(t, Query{JobType: "full-time"}.WantsH1B())
}
