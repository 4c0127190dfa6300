package main

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"onlyremote-engine/internal/aggregate"
	"onlyremote-engine/internal/cache"
	"onlyremote-engine/internal/config"
	"onlyremote-engine/internal/domain"
	"onlyremote-engine/internal/generate"
	"onlyremote-engine/internal/logger"
	"onlyremote-engine/internal/metrics"
	"onlyremote-engine/internal/scrape"
	"onlyremote-engine/internal/scrape/fetch"
	"onlyremote-engine/internal/scrape/util"
	"onlyremote-engine/internal/secrets"
	"onlyremote-engine/internal/usage"
)

// engine owns the fetch stack and the current registry. apply swaps the
// registry and aggregator in place so config edits take effect without a
// restart; the cache backend and HTTP client are fixed at startup.
type engine struct {
	log     logger.Logger
	metrics *metrics.Metrics
	cache   cache.Cache
	client  *fetch.Client
	keys    secrets.Resolver

	reg atomic.Pointer[scrape.Registry]
	agg atomic.Pointer[aggregate.Aggregator]
}

func newEngine(cfg config.Config, keys secrets.Resolver, m *metrics.Metrics, log logger.Logger) (*engine, error) {
	c, err := newCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	e := &engine{log: log, metrics: m, cache: c, keys: keys}
	// A zero rate means unthrottled.
	var lim *util.HostLimiter
	if cfg.HTTP.RatePerSecond > 0 {
		lim = util.NewHostLimiter(cfg.HTTP.RatePerSecond, max(cfg.HTTP.Burst, 1))
	}
	e.client = fetch.New(fetch.Options{
		HTTP:      &http.Client{Timeout: time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second},
		Cache:     c,
		Limiter:   lim,
		Logger:    log,
		Metrics:   m,
		UserAgent: cfg.HTTP.UserAgent,
	})
	e.apply(cfg)
	return e, nil
}

func newCache(cfg config.Cache) (cache.Cache, error) {
	switch cfg.Backend {
	case "redis":
		r, err := cache.NewRedis(cache.RedisConfig{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	case "", "memory":
		return cache.NewMemory(), nil
	}
	return nil, errors.New("unknown cache backend " + cfg.Backend)
}

func (e *engine) apply(cfg config.Config) {
	reg := scrape.NewRegistry(cfg, e.client, e.keys.Lookup, e.log)
	e.reg.Store(reg)
	e.agg.Store(aggregate.New(reg, aggregate.Options{Logger: e.log, Metrics: e.metrics}))
	e.log.Info("sources configured", logger.Strings("enabled", reg.Names()))
}

func (e *engine) FetchAggregated(ctx context.Context, q domain.Query) (domain.Result, error) {
	return e.agg.Load().FetchAggregated(ctx, q)
}

func (e *engine) sourceNames() []string {
	return e.reg.Load().Names()
}

// sweep drops expired entries from the in-process cache. Redis expires
// keys itself.
func (e *engine) sweep(context.Context) error {
	if m, ok := e.cache.(*cache.Memory); ok {
		if n := m.Sweep(); n > 0 {
			e.log.Debug("cache sweep", logger.Int("expired", n))
		}
	}
	return nil
}

func (e *engine) Close() error {
	if r, ok := e.cache.(*cache.Redis); ok {
		return r.Close()
	}
	return nil
}

// newWriter wires the text-generation backend. Without an API key the
// service is returned unconfigured and the AI routes answer 503.
func newWriter(cfg config.AI, keys secrets.Resolver, log logger.Logger) *generate.Service {
	key := keys.Lookup(cfg.APIKeyEnv)
	if key == "" {
		log.Warn("text generation disabled, api key not set", logger.String("env", cfg.APIKeyEnv))
		return generate.NewService(nil, cfg.ResumeModels, cfg.LetterModels, log)
	}
	gen, err := generate.NewOpenAI(generate.OpenAIConfig{
		APIKey:  key,
		BaseURL: cfg.BaseURL,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		Referer: "https://onlyremote.jobs",
		Title:   "Only Remote",
	})
	if err != nil {
		log.Warn("text generation disabled", logger.Error(err))
		return generate.NewService(nil, cfg.ResumeModels, cfg.LetterModels, log)
	}
	return generate.NewService(gen, cfg.ResumeModels, cfg.LetterModels, log)
}

func usageLimits(u config.Usage) usage.Limits {
	return usage.Limits{
		ResumeScans:  u.FreeResumeScans,
		CoverLetters: u.FreeCoverLetters,
		ResetAfter:   time.Duration(u.ResetDays) * 24 * time.Hour,
	}
}
