package types

import (
	"context"
	"errors"
	"time"

	"onlyremote-engine/internal/domain"
)

// ErrMissingCredentials marks a paid feed with no API key configured. The
// aggregator treats it like any other failure but logs it at warn.
var ErrMissingCredentials = errors.New("missing api credentials")

// Source is one upstream job feed.
type Source interface {
	Name() string
	// SupportsServerFilter reports whether the upstream honours the query
	// text. Sources that don't always request the same URL and filter in
	// memory.
	SupportsServerFilter() bool
	Fetch(ctx context.Context, q domain.Query) ([]domain.Job, error)
}

// DisjunctiveSource is implemented by feeds that accept an OR expression in
// a single request.
type DisjunctiveSource interface {
	Source
	SupportsDisjunction() bool
}

// Config is the per-source knobs every adapter accepts.
type Config struct {
	BaseURL string
	Limit   int
	TTL     time.Duration
	APIKey  string
}

func (c Config) WithDefaults(baseURL string, limit int, ttl time.Duration) Config {
	if c.BaseURL == "" {
		c.BaseURL = baseURL
	}
	if c.Limit <= 0 {
		c.Limit = limit
	}
	if c.TTL <= 0 {
		c.TTL = ttl
	}
	return c
}

type WarmStatus struct {
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	LastJobs  int    `json:"last_jobs"`
	Running   bool   `json:"running"`
}
