package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onlyremote-engine/internal/cache"
)

func jsonServer(t *testing.T, hits *int32, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetJSONCachesByURL(t *testing.T) {
	var hits int32
	srv := jsonServer(t, &hits, `{"n":1}`)
	c := New(Options{Cache: cache.NewMemory()})

	var out struct{ N int }
	req := Request{Source: "test", URL: srv.URL + "/a", TTL: time.Minute}
	require.NoError(t, c.GetJSON(context.Background(), req, &out))
	require.NoError(t, c.GetJSON(context.Background(), req, &out))
	assert.Equal(t, 1, out.N)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))

	req.URL = srv.URL + "/b"
	require.NoError(t, c.GetJSON(context.Background(), req, &out))
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestZeroTTLBypassesCache(t *testing.T) {
	var hits int32
	srv := jsonServer(t, &hits, `{}`)
	c := New(Options{})
	var out map[string]any
	for i := 0; i < 3; i++ {
		require.NoError(t, c.GetJSON(context.Background(), Request{Source: "t", URL: srv.URL}, &out))
	}
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestConcurrentMissesCollapse(t *testing.T) {
	var hits int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(Options{})
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var out []any
			assert.NoError(t, c.GetJSON(context.Background(), Request{Source: "t", URL: srv.URL, TTL: time.Minute}, &out))
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestNon2xxIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(Options{})
	var out any
	err := c.GetJSON(context.Background(), Request{Source: "fantastic-jobs", URL: srv.URL, TTL: time.Hour}, &out)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.Contains(t, se.Body, "quota exceeded")
	assert.Equal(t, "fantastic-jobs status 429", err.Error())
}

func TestNonJSONContentTypeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>blocked</html>"))
	}))
	defer srv.Close()

	mc := cache.NewMemory()
	c := New(Options{Cache: mc})
	var out any
	err := c.GetJSON(context.Background(), Request{Source: "remoteok", URL: srv.URL, TTL: time.Hour}, &out)
	assert.ErrorIs(t, err, ErrContentType)
	assert.Equal(t, 0, mc.Len())

	text, err := c.GetText(context.Background(), Request{Source: "h1b", URL: srv.URL})
	require.NoError(t, err)
	assert.Contains(t, text, "blocked")
}

func TestHeadersForwarded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(Options{})
	h := http.Header{}
	h.Set("x-rapidapi-key", "secret")
	var out []any
	require.NoError(t, c.GetJSON(context.Background(), Request{Source: "t", URL: srv.URL, Header: h}, &out))
}
