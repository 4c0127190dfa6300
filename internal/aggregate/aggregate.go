// Package aggregate merges every selected source into one ranked, filtered
// and paginated result.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/logger"
	"onlyremote-engine/internal/metrics"
	"onlyremote-engine/internal/rank"
	"onlyremote-engine/internal/scrape/types"
)

// ErrAggregation is returned when merging, filtering or ranking fails. Source
// failures never produce it.
var ErrAggregation = errors.New("aggregation failed")

// Selector resolves a query's source list. *scrape.Registry implements it.
type Selector interface {
	Select(requested []string) []types.Source
}

type Options struct {
	Logger  logger.Logger
	Metrics *metrics.Metrics
	// Concurrency caps simultaneous upstream calls. Zero means no cap.
	Concurrency int
	Now         func() time.Time
}

type Aggregator struct {
	sources     Selector
	log         logger.Logger
	m           *metrics.Metrics
	concurrency int
	now         func() time.Time
}

func New(sources Selector, o Options) *Aggregator {
	a := &Aggregator{
		sources:     sources,
		log:         o.Logger,
		m:           o.Metrics,
		concurrency: o.Concurrency,
		now:         o.Now,
	}
	if a.log == nil {
		a.log = logger.NewNop()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// FetchAggregated runs the whole pipeline for q: fan out, merge, dedupe,
// filter, rank, paginate. Result.Total counts filtered jobs before paging.
func (a *Aggregator) FetchAggregated(ctx context.Context, q domain.Query) (res domain.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("aggregation panicked",
				logger.Any("panic", r),
				logger.String("stack", string(debug.Stack())))
			res, err = domain.Result{}, fmt.Errorf("%w: %v", ErrAggregation, r)
		}
	}()

	start := time.Now()
	merged := a.fanOut(ctx, a.sources.Select(q.Sources), q)
	if err := ctx.Err(); err != nil {
		return domain.Result{}, err
	}

	unique := Dedupe(merged)
	filtered := Filter(unique, q)
	ranked := rank.For(q.Sort).Rank(filtered, a.now())
	page := Paginate(ranked, q)

	a.m.ObserveAggregate(time.Since(start), len(merged), len(unique), len(ranked), len(page))
	a.log.Info("aggregated",
		logger.String("q", q.Q),
		logger.String("location", q.Location),
		logger.String("job_type", q.JobType),
		logger.Bool("h1b", q.H1B),
		logger.Int("page", q.Page),
		logger.Int("merged", len(merged)),
		logger.Int("unique", len(unique)),
		logger.Int("total", len(ranked)),
		logger.Int("returned", len(page)),
		logger.Duration("took", time.Since(start)))

	return domain.Result{Jobs: page, Total: len(ranked)}, nil
}
