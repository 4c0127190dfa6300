package aggregate

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/logger"
	"onlyremote-engine/internal/metrics"
	"onlyremote-engine/internal/scrape/types"
	"onlyremote-engine/internal/scrape/util"
)

type call struct {
	src types.Source
	q   domain.Query
}

// plan expands sources into upstream calls. Sources that ignore the query
// or take an OR expression natively get one call; the rest get one call per
// OR branch.
func plan(sources []types.Source, q domain.Query) []call {
	var calls []call
	for _, src := range sources {
		if !src.SupportsServerFilter() {
			calls = append(calls, call{src: src, q: q})
			continue
		}
		if ds, ok := src.(types.DisjunctiveSource); ok && ds.SupportsDisjunction() {
			calls = append(calls, call{src: src, q: q})
			continue
		}
		subs := util.SplitDisjunction(q.Q)
		if len(subs) == 0 {
			calls = append(calls, call{src: src, q: q})
			continue
		}
		for _, sub := range subs {
			sq := q
			sq.Q = sub
			calls = append(calls, call{src: src, q: sq})
		}
	}
	return calls
}

// fanOut runs every planned call concurrently and concatenates the results
// in plan order. Failed calls contribute nothing.
func (a *Aggregator) fanOut(ctx context.Context, sources []types.Source, q domain.Query) []domain.Job {
	calls := plan(sources, q)
	slots := make([][]domain.Job, len(calls))

	var g errgroup.Group
	if a.concurrency > 0 {
		g.SetLimit(a.concurrency)
	}
	for i, c := range calls {
		g.Go(func() error {
			slots[i] = a.safeFetch(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, s := range slots {
		n += len(s)
	}
	out := make([]domain.Job, 0, n)
	for _, s := range slots {
		out = append(out, s...)
	}
	return out
}

func (a *Aggregator) safeFetch(ctx context.Context, c call) (jobs []domain.Job) {
	name := c.src.Name()
	start := time.Now()
	outcome := metrics.OutcomeOK

	defer func() {
		if r := recover(); r != nil {
			outcome = metrics.OutcomePanic
			jobs = nil
			a.log.Error("source panicked",
				logger.String("source", name),
				logger.String("q", c.q.Q),
				logger.Any("panic", r),
				logger.String("stack", string(debug.Stack())))
		}
		a.m.ObserveFetch(name, outcome, len(jobs), time.Since(start))
	}()

	jobs, err := c.src.Fetch(ctx, c.q)
	switch {
	case err == nil:
		a.log.Debug("source fetched",
			logger.String("source", name),
			logger.String("q", c.q.Q),
			logger.Int("jobs", len(jobs)),
			logger.Duration("took", time.Since(start)))
		return jobs
	case errors.Is(err, types.ErrMissingCredentials):
		outcome = metrics.OutcomeNoKey
		a.log.Warn("source skipped", logger.String("source", name), logger.Error(err))
	default:
		outcome = metrics.OutcomeError
		a.log.Error("source failed",
			logger.String("source", name),
			logger.String("q", c.q.Q),
			logger.Error(fmt.Errorf("fetch %s: %w", name, err)))
	}
	return nil
}
