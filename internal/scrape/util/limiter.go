package util

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// unparsedHost is the bucket shared by request URLs without a usable host.
const unparsedHost = "_"

// HostLimiter paces outbound feed requests per upstream host. The RapidAPI
// feeds (active-jobs-db, linkedin-job-search-api, internships-api) each live on
// their own host, so one feed's quota never throttles remotive.com, remoteok.com
// or the GitHub raw listing. Hosts are keyed case-insensitively and without the
// port.
type HostLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	every   rate.Limit
	burst   int
}

// NewHostLimiter allows reqPerSec requests per host with the given burst.
// A burst below one is raised to one so Wait can ever succeed.
func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	return &HostLimiter{
		buckets: make(map[string]*rate.Limiter),
		every:   rate.Limit(reqPerSec),
		burst:   max(burst, 1),
	}
}

func (hl *HostLimiter) bucket(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.buckets[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(hl.every, hl.burst)
	hl.buckets[host] = lim
	return lim
}

// WaitURL blocks until the host of raw may be hit again or ctx ends.
func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	return hl.bucket(hostKey(raw)).Wait(ctx)
}

func hostKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return unparsedHost
	}
	return strings.ToLower(u.Hostname())
}
