// Package poll keeps the upstream cache warm by running a fixed set of
// searches on a schedule, so user requests mostly hit cached responses.
package poll

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/events"
	"onlyremote-engine/internal/logger"
	"onlyremote-engine/internal/scheduler"
	"onlyremote-engine/internal/scrape/types"
)

var ErrAlreadyRunning = errors.New("warm run already in progress")

type Searcher interface {
	FetchAggregated(ctx context.Context, q domain.Query) (domain.Result, error)
}

type Options struct {
	// Queries returns the searches to run. It is called on every run so
	// config reloads take effect without a restart.
	Queries func() []string
	// Sources restricts each warm search. Empty means the default set.
	Sources []string
	Hub     *events.Hub
	Logger  logger.Logger
}

type Warmer struct {
	search  Searcher
	queries func() []string
	sources []string
	hub     *events.Hub
	log     logger.Logger
	now     func() time.Time

	running atomic.Bool
	mu      sync.RWMutex
	status  types.WarmStatus
}

func NewWarmer(search Searcher, o Options) *Warmer {
	w := &Warmer{
		search:  search,
		queries: o.Queries,
		sources: o.Sources,
		hub:     o.Hub,
		log:     o.Logger,
		now:     time.Now,
	}
	if w.queries == nil {
		w.queries = func() []string { return []string{""} }
	}
	if w.log == nil {
		w.log = logger.NewNop()
	}
	return w
}

func (w *Warmer) Status() types.WarmStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status
}

func (w *Warmer) update(fn func(*types.WarmStatus)) {
	w.mu.Lock()
	fn(&w.status)
	w.mu.Unlock()
}

// RunOnce runs every configured query once. jobs is the sum of each
// query's total. Only one run happens at a time.
func (w *Warmer) RunOnce(ctx context.Context) (jobs int, err error) {
	if !w.running.CompareAndSwap(false, true) {
		return 0, ErrAlreadyRunning
	}
	defer w.running.Store(false)

	start := w.now()
	w.update(func(st *types.WarmStatus) {
		st.Running = true
		st.LastRunAt = start.UTC().Format(time.RFC3339)
	})
	w.hub.Publish(events.MakeEvent("", events.TypeWarmStarted, 1, nil))

	queries := dedupe(w.queries())
	var errs []error
	for _, q := range queries {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		res, err := w.search.FetchAggregated(ctx, domain.Query{Q: q, Sources: w.sources})
		if err != nil {
			errs = append(errs, fmt.Errorf("query %q: %w", q, err))
			continue
		}
		jobs += res.Total
	}
	err = errors.Join(errs...)
	took := w.now().Sub(start)

	w.update(func(st *types.WarmStatus) {
		st.Running = false
		st.LastJobs = jobs
		if err != nil {
			st.LastError = err.Error()
			return
		}
		st.LastError = ""
		st.LastOkAt = w.now().UTC().Format(time.RFC3339)
	})

	if err != nil {
		w.log.Error("warm run failed", logger.Error(err), logger.Int("jobs", jobs))
		w.hub.Publish(events.MakeEvent("", events.TypeWarmFailed, 1, map[string]string{"error": err.Error()}))
		return jobs, err
	}
	w.log.Info("warm run ok",
		logger.Int("queries", len(queries)),
		logger.Int("jobs", jobs),
		logger.Duration("took", took))
	w.hub.Publish(events.MakeEvent("", events.TypeJobsRefreshed, 1, events.RefreshedData{
		Queries: len(queries),
		Jobs:    jobs,
		TookMS:  int(took.Milliseconds()),
	}))
	return jobs, nil
}

// Start runs the warmer every interval until ctx ends. It does not block.
func (w *Warmer) Start(ctx context.Context, interval time.Duration) {
	go scheduler.Every(ctx, interval, "warm", func(ctx context.Context) error {
		_, err := w.RunOnce(ctx)
		if errors.Is(err, ErrAlreadyRunning) {
			return nil
		}
		return err
	}, w.log)
}

func dedupe(qs []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, q := range qs {
		q = strings.TrimSpace(q)
		if seen[strings.ToLower(q)] {
			continue
		}
		seen[strings.ToLower(q)] = true
		out = append(out, q)
	}
	return out
}
