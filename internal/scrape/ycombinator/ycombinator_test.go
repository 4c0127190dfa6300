package ycombinator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/scrape/fetch"
	"onlyremote-engine/internal/scrape/types"
)

const payload = `[
  {"id":"1","title":"Founding Engineer","organization":"Rocketly","url":"https://yc.example/1",
   "locations_derived":["San Francisco, CA"],"employment_type":["FULL_TIME"]},
  {"id":"2","title":"Growth Marketer","organization":"Ads Inc","url":"https://yc.example/2","job_location":"Remote, EU"},
  {"id":"3","title":"Backend Engineer","organization":"Basepair","url":"https://yc.example/3"}
]`

func TestInMemoryFiltering(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Empty(t, r.URL.Query().Get("title_filter"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	s := New(types.Config{BaseURL: srv.URL, APIKey: "k"}, fetch.New(fetch.Options{}))
	ctx := context.Background()

	jobs, err := s.Fetch(ctx, domain.Query{Q: `"engineer" OR marketer`})
	require.NoError(t, err)
	assert.Len(t, jobs, 3)

	jobs, err = s.Fetch(ctx, domain.Query{Q: "engineer", Location: "san francisco"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "yc-1", jobs[0].ID)
	assert.Equal(t, []string{"Startup", "YCombinator", "FULL_TIME"}, jobs[0].Tags)

	jobs, err = s.Fetch(ctx, domain.Query{Location: "remote"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Remote, EU", jobs[0].Location)
	assert.Equal(t, "Remote", jobs[1].Location)

	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}
