// Package metrics exposes Prometheus instrumentation for upstream feeds,
// the response cache and the aggregator.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "onlyremote"

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeNoKey = "no_credentials"
	OutcomePanic = "panic"
)

type Metrics struct {
	reg *prometheus.Registry

	SourceFetches     *prometheus.CounterVec
	SourceDuration    *prometheus.HistogramVec
	SourceJobs        *prometheus.CounterVec
	CacheLookups      *prometheus.CounterVec
	UpstreamRequests  *prometheus.CounterVec
	AggregateDuration prometheus.Histogram
	AggregateJobs     *prometheus.HistogramVec
}

// New builds a Metrics on its own registry so tests can create as many as
// they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		SourceFetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetches_total",
			Help:      "Adapter invocations by source and outcome.",
		}, []string{"source", "outcome"}),
		SourceDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_duration_seconds",
			Help:      "Adapter latency including cache lookups.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"source"}),
		SourceJobs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_jobs_total",
			Help:      "Normalized jobs returned per source.",
		}, []string{"source"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Upstream response cache lookups by result.",
		}, []string{"source", "result"}),
		UpstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "HTTP requests actually sent upstream, by status code.",
		}, []string{"source", "code"}),
		AggregateDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregate_duration_seconds",
			Help:      "End to end aggregation latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		AggregateJobs: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregate_jobs",
			Help:      "Job counts at each aggregation stage.",
			Buckets:   []float64{0, 10, 50, 100, 250, 500, 1000, 2500},
		}, []string{"stage"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// ObserveFetch records one adapter call. A nil receiver is a no-op so
// components can run without instrumentation.
func (m *Metrics) ObserveFetch(source, outcome string, jobs int, d time.Duration) {
	if m == nil {
		return
	}
	m.SourceFetches.WithLabelValues(source, outcome).Inc()
	m.SourceDuration.WithLabelValues(source).Observe(d.Seconds())
	if jobs > 0 {
		m.SourceJobs.WithLabelValues(source).Add(float64(jobs))
	}
}

func (m *Metrics) ObserveCache(source string, hit bool) {
	if m == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	m.CacheLookups.WithLabelValues(source, res).Inc()
}

func (m *Metrics) ObserveUpstream(source string, code string) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(source, code).Inc()
}

func (m *Metrics) ObserveAggregate(d time.Duration, merged, unique, filtered, returned int) {
	if m == nil {
		return
	}
	m.AggregateDuration.Observe(d.Seconds())
	m.AggregateJobs.WithLabelValues("merged").Observe(float64(merged))
	m.AggregateJobs.WithLabelValues("unique").Observe(float64(unique))
	m.AggregateJobs.WithLabelValues("filtered").Observe(float64(filtered))
	m.AggregateJobs.WithLabelValues("returned").Observe(float64(returned))
}
