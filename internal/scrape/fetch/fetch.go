// Package fetch is the one HTTP path every source adapter goes through. It
// adds the response cache, per-host rate limiting and collapsing of
// identical in-flight requests.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"onlyremote-engine/internal/cache"
	"onlyremote-engine/internal/logger"
	"onlyremote-engine/internal/metrics"
	"onlyremote-engine/internal/scrape/util"
)

const (
	DefaultUserAgent = "OnlyRemote/1.0 (https://onlyremote.org)"
	maxBody          = 16 << 20
)

var ErrContentType = errors.New("upstream returned non-JSON response")

type StatusError struct {
	Source string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s status %d", e.Source, e.Code)
}

type Request struct {
	Source string
	URL    string
	Header http.Header
	// TTL is how long a successful body is reused. Zero disables caching.
	TTL time.Duration
}

type Options struct {
	HTTP      *http.Client
	Cache     cache.Cache
	Limiter   *util.HostLimiter
	Logger    logger.Logger
	Metrics   *metrics.Metrics
	UserAgent string
}

type Client struct {
	hc      *http.Client
	cache   cache.Cache
	limiter *util.HostLimiter
	log     logger.Logger
	m       *metrics.Metrics
	ua      string
	group   singleflight.Group
}

func New(o Options) *Client {
	c := &Client{
		hc:      o.HTTP,
		cache:   o.Cache,
		limiter: o.Limiter,
		log:     o.Logger,
		m:       o.Metrics,
		ua:      o.UserAgent,
	}
	if c.hc == nil {
		c.hc = &http.Client{Timeout: 20 * time.Second}
	}
	if c.cache == nil {
		c.cache = cache.NewMemory()
	}
	if c.log == nil {
		c.log = logger.NewNop()
	}
	if c.ua == "" {
		c.ua = DefaultUserAgent
	}
	return c
}

// GetJSON decodes a JSON body into v. The upstream must declare an
// application/json content type.
func (c *Client) GetJSON(ctx context.Context, req Request, v any) error {
	b, err := c.get(ctx, req, true)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%s decode: %w", req.Source, err)
	}
	return nil
}

func (c *Client) GetText(ctx context.Context, req Request) (string, error) {
	b, err := c.get(ctx, req, false)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Client) get(ctx context.Context, req Request, wantJSON bool) ([]byte, error) {
	if req.TTL > 0 {
		b, ok, err := c.cache.Get(ctx, req.URL)
		if err != nil {
			c.log.Warn("cache read failed", logger.String("source", req.Source), logger.Error(err))
		}
		c.m.ObserveCache(req.Source, ok)
		if ok {
			return b, nil
		}
	}

	// The upstream call outlives a cancelled caller so the response still
	// lands in the cache for whoever asks next.
	ch := c.group.DoChan(req.URL, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.detachedTimeout())
		defer cancel()
		b, err := c.do(fctx, req, wantJSON)
		if err != nil {
			return nil, err
		}
		if req.TTL > 0 {
			if err := c.cache.Set(fctx, req.URL, b, req.TTL); err != nil {
				c.log.Warn("cache write failed", logger.String("source", req.Source), logger.Error(err))
			}
		}
		return b, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (c *Client) do(ctx context.Context, req Request, wantJSON bool) ([]byte, error) {
	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", req.Source, err)
	}
	hreq.Header.Set("User-Agent", c.ua)
	if wantJSON {
		hreq.Header.Set("Accept", "application/json")
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			hreq.Header.Set(k, v)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, req.URL); err != nil {
			return nil, err
		}
	}

	res, err := c.hc.Do(hreq)
	if err != nil {
		c.m.ObserveUpstream(req.Source, "error")
		return nil, fmt.Errorf("%s get: %w", req.Source, err)
	}
	defer res.Body.Close()
	c.m.ObserveUpstream(req.Source, strconv.Itoa(res.StatusCode))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, &StatusError{Source: req.Source, Code: res.StatusCode, Body: string(b)}
	}
	if wantJSON && !strings.Contains(res.Header.Get("Content-Type"), "application/json") {
		return nil, fmt.Errorf("%s: %w (content-type %q)", req.Source, ErrContentType, res.Header.Get("Content-Type"))
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%s read: %w", req.Source, err)
	}
	return b, nil
}

func (c *Client) detachedTimeout() time.Duration {
	if c.hc.Timeout > 0 {
		return c.hc.Timeout + time.Second
	}
	return 30 * time.Second
}
