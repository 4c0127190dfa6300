package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/metrics"
	"onlyremote-engine/internal/scrape"
	"onlyremote-engine/internal/scrape/types"
)

var now = time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	name   string
	server bool
	disj   bool
	delay  time.Duration
	fetch  func(q domain.Query) ([]domain.Job, error)

	mu    sync.Mutex
	calls []string
}

func (f *fakeSource) Name() string               { return f.name }
func (f *fakeSource) SupportsServerFilter() bool { return f.server }
func (f *fakeSource) SupportsDisjunction() bool  { return f.disj }

func (f *fakeSource) Fetch(ctx context.Context, q domain.Query) ([]domain.Job, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q.Q)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fetch == nil {
		return nil, nil
	}
	return f.fetch(q)
}

func (f *fakeSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func returns(jobs ...domain.Job) func(domain.Query) ([]domain.Job, error) {
	return func(domain.Query) ([]domain.Job, error) { return jobs, nil }
}

func mk(id, source, title, company string) domain.Job {
	return domain.Job{
		ID: id, Source: source, Title: title, Company: company,
		Location: "Remote", PublishedAt: "2025-10-14T10:00:00Z",
	}
}

func newAgg(sources ...types.Source) *Aggregator {
	return New(scrape.NewStaticRegistry(sources), Options{Now: func() time.Time { return now }})
}

func TestOrFanOutCallCounts(t *testing.T) {
	ignores := &fakeSource{name: "ignores"}
	single := &fakeSource{name: "single", server: true}
	native := &fakeSource{name: "native", server: true, disj: true}

	_, err := newAgg(ignores, single, native).FetchAggregated(context.Background(),
		domain.Query{Q: `"Go" OR rust OR go`})
	require.NoError(t, err)

	assert.Equal(t, []string{`"Go" OR rust OR go`}, ignores.Calls())
	assert.ElementsMatch(t, []string{"Go", "rust"}, single.Calls())
	assert.Equal(t, []string{`"Go" OR rust OR go`}, native.Calls())
}

func TestPlainQueryIsOneCallEach(t *testing.T) {
	single := &fakeSource{name: "single", server: true}
	_, err := newAgg(single).FetchAggregated(context.Background(), domain.Query{Q: "golang"})
	require.NoError(t, err)
	assert.Equal(t, []string{"golang"}, single.Calls())

	empty := &fakeSource{name: "empty", server: true}
	_, err = newAgg(empty).FetchAggregated(context.Background(), domain.Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{""}, empty.Calls())
}

func TestMergeKeepsCallOrderNotCompletionOrder(t *testing.T) {
	slow := &fakeSource{name: "slow", delay: 50 * time.Millisecond,
		fetch: returns(mk("slow-1", "slow", "Go Engineer", "Acme"))}
	fast := &fakeSource{name: "fast",
		fetch: returns(mk("fast-1", "fast", "go engineer ", " ACME"))}

	res, err := newAgg(slow, fast).FetchAggregated(context.Background(), domain.Query{})
	require.NoError(t, err)
	require.Len(t, res.Jobs, 1)
	assert.Equal(t, "slow-1", res.Jobs[0].ID)
}

func TestPartialFailureTolerance(t *testing.T) {
	m := metrics.New()
	good := &fakeSource{name: "good", fetch: returns(mk("g-1", "good", "Backend", "A"), mk("g-2", "good", "Frontend", "B"))}
	bad := &fakeSource{name: "bad", fetch: func(domain.Query) ([]domain.Job, error) {
		return nil, errors.New("upstream 503")
	}}
	nokey := &fakeSource{name: "nokey", fetch: func(domain.Query) ([]domain.Job, error) {
		return nil, fmt.Errorf("nokey: %w", types.ErrMissingCredentials)
	}}
	boom := &fakeSource{name: "boom", fetch: func(domain.Query) ([]domain.Job, error) {
		panic("nil map write")
	}}

	agg := New(scrape.NewStaticRegistry([]types.Source{bad, good, boom, nokey}), Options{Metrics: m, Now: func() time.Time { return now }})
	res, err := agg.FetchAggregated(context.Background(), domain.Query{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)

	assert.InDelta(t, 1, testutil.ToFloat64(m.SourceFetches.WithLabelValues("good", metrics.OutcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SourceFetches.WithLabelValues("bad", metrics.OutcomeError)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SourceFetches.WithLabelValues("boom", metrics.OutcomePanic)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SourceFetches.WithLabelValues("nokey", metrics.OutcomeNoKey)), 0)
}

func TestAllSourcesFailingIsEmptyNotError(t *testing.T) {
	bad := &fakeSource{name: "bad", fetch: func(domain.Query) ([]domain.Job, error) { return nil, errors.New("x") }}
	res, err := newAgg(bad).FetchAggregated(context.Background(), domain.Query{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Jobs)
	assert.Zero(t, res.Total)
}

type panickySelector struct{}

func (panickySelector) Select([]string) []types.Source { panic("bad registry") }

func TestInternalPanicBecomesErrAggregation(t *testing.T) {
	_, err := New(panickySelector{}, Options{}).FetchAggregated(context.Background(), domain.Query{})
	assert.ErrorIs(t, err, ErrAggregation)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newAgg(&fakeSource{name: "a"}).FetchAggregated(ctx, domain.Query{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPaginationBounds(t *testing.T) {
	var jobs []domain.Job
	for i := 0; i < 55; i++ {
		j := mk(fmt.Sprintf("s-%02d", i), "s", fmt.Sprintf("Role %02d", i), "Co")
		j.PublishedAt = now.Add(-time.Duration(i) * time.Hour).Format(time.RFC3339)
		jobs = append(jobs, j)
	}
	agg := newAgg(&fakeSource{name: "s", fetch: returns(jobs...)})

	res, err := agg.FetchAggregated(context.Background(), domain.Query{Limit: 24, Page: 3})
	require.NoError(t, err)
	assert.Equal(t, 55, res.Total)
	require.Len(t, res.Jobs, 7)
	assert.Equal(t, "s-48", res.Jobs[0].ID)

	res, err = agg.FetchAggregated(context.Background(), domain.Query{Limit: 24, Page: 4})
	require.NoError(t, err)
	assert.Empty(t, res.Jobs)
	assert.Equal(t, 55, res.Total)

	res, err = agg.FetchAggregated(context.Background(), domain.Query{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, res.Jobs, 10)
	assert.Equal(t, "s-00", res.Jobs[0].ID)

	res, err = agg.FetchAggregated(context.Background(), domain.Query{Limit: 10, Sort: domain.SortOldest})
	require.NoError(t, err)
	assert.Equal(t, "s-54", res.Jobs[0].ID)
}

func TestFilterAndSortEndToEnd(t *testing.T) {
	h := mk("h1b-1", "h1b", "Software Engineer", "Stripe")
	h.Tags = []string{"H1B", "Software Engineering"}
	h.PublishedAt = "2025-10-13T00:00:00Z"

	intern := mk("r-1", "remotive", "Software Engineering Intern", "Figma")
	intern.Tags = []string{"H1B"}

	other := mk("r-2", "remotive", "Data Engineer", "Acme")

	agg := newAgg(
		&fakeSource{name: "remotive", fetch: returns(intern, other)},
		&fakeSource{name: "h1b", fetch: returns(h)},
	)

	res, err := agg.FetchAggregated(context.Background(), domain.Query{Q: "engineer", H1B: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, "r-1", res.Jobs[0].ID)

	res, err = agg.FetchAggregated(context.Background(), domain.Query{JobType: "internship", H1B: true})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "r-1", res.Jobs[0].ID)

	res, err = agg.FetchAggregated(context.Background(), domain.Query{JobType: "h1b"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
}
