package scrape

import (
	"onlyremote-engine/internal/config"
	"onlyremote-engine/internal/logger"
	"onlyremote-engine/internal/scrape/activeintern"
	"onlyremote-engine/internal/scrape/activejobs"
	"onlyremote-engine/internal/scrape/fetch"
	"onlyremote-engine/internal/scrape/h1b"
	"onlyremote-engine/internal/scrape/himalayas"
	"onlyremote-engine/internal/scrape/openwebninja"
	"onlyremote-engine/internal/scrape/remoteintern"
	"onlyremote-engine/internal/scrape/remoteok"
	"onlyremote-engine/internal/scrape/remotive"
	"onlyremote-engine/internal/scrape/sponsorship"
	"onlyremote-engine/internal/scrape/types"
	"onlyremote-engine/internal/scrape/ycombinator"
)

type builder func(types.Config, *fetch.Client) types.Source

var builders = map[string]builder{
	remotive.Name:     func(c types.Config, f *fetch.Client) types.Source { return remotive.New(c, f) },
	remoteok.Name:     func(c types.Config, f *fetch.Client) types.Source { return remoteok.New(c, f) },
	himalayas.Name:    func(c types.Config, f *fetch.Client) types.Source { return himalayas.New(c, f) },
	openwebninja.Name: func(c types.Config, f *fetch.Client) types.Source { return openwebninja.New(c, f) },
	activejobs.Name:   func(c types.Config, f *fetch.Client) types.Source { return activejobs.New(c, f) },
	activeintern.Name: func(c types.Config, f *fetch.Client) types.Source { return activeintern.New(c, f) },
	remoteintern.Name: func(c types.Config, f *fetch.Client) types.Source { return remoteintern.New(c, f) },
	sponsorship.Name:  func(c types.Config, f *fetch.Client) types.Source { return sponsorship.New(c, f) },
	ycombinator.Name:  func(c types.Config, f *fetch.Client) types.Source { return ycombinator.New(c, f) },
	h1b.Name:          func(c types.Config, f *fetch.Client) types.Source { return h1b.New(c, f) },
}

// KeyFunc resolves an API key by its environment variable name.
type KeyFunc func(envName string) string

// Registry holds the enabled adapters. Selection always returns them in
// registration order so merged results don't depend on how the caller
// spelled the source list.
type Registry struct {
	sources  map[string]types.Source
	order    []string
	defaults map[string]bool
	pinned   []string
}

func NewRegistry(cfg config.Config, client *fetch.Client, key KeyFunc, log logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNop()
	}
	r := &Registry{
		sources:  map[string]types.Source{},
		defaults: map[string]bool{},
	}
	for _, name := range config.KnownSources {
		sc, ok := cfg.Sources[name]
		if !ok || !sc.Enabled {
			continue
		}
		tc := types.Config{BaseURL: sc.BaseURL, Limit: sc.Limit, TTL: sc.TTL()}
		if sc.APIKeyEnv != "" && key != nil {
			tc.APIKey = key(sc.APIKeyEnv)
			if tc.APIKey == "" {
				log.Warn("source enabled without api key", logger.String("source", name), logger.String("env", sc.APIKeyEnv))
			}
		}
		r.sources[name] = builders[name](tc, client)
		r.order = append(r.order, name)
		if sc.Default {
			r.defaults[name] = true
		}
	}
	for _, p := range cfg.Pinned {
		if _, ok := r.sources[p]; ok {
			r.pinned = append(r.pinned, p)
		}
	}
	return r
}

// NewStaticRegistry wraps prebuilt sources in the given order. Every
// source not pinned is a default.
func NewStaticRegistry(sources []types.Source, pinned ...string) *Registry {
	r := &Registry{sources: map[string]types.Source{}, defaults: map[string]bool{}}
	for _, s := range sources {
		r.sources[s.Name()] = s
		r.order = append(r.order, s.Name())
		r.defaults[s.Name()] = true
	}
	for _, p := range pinned {
		delete(r.defaults, p)
		r.pinned = append(r.pinned, p)
	}
	return r
}

func (r *Registry) Get(name string) (types.Source, bool) {
	s, ok := r.sources[name]
	return s, ok
}

// Names lists every enabled source.
func (r *Registry) Names() []string {
	return r.ordered(func(string) bool { return true })
}

// Select resolves a caller's source list. An empty list means the default
// set. Unknown or disabled names are ignored. Pinned sources always come
// last.
func (r *Registry) Select(requested []string) []types.Source {
	want := map[string]bool{}
	for _, n := range requested {
		want[n] = true
	}
	pinned := map[string]bool{}
	for _, p := range r.pinned {
		pinned[p] = true
	}

	names := r.ordered(func(n string) bool {
		if pinned[n] {
			return false
		}
		if len(requested) == 0 {
			return r.defaults[n]
		}
		return want[n]
	})
	names = append(names, r.pinned...)

	out := make([]types.Source, 0, len(names))
	for _, n := range names {
		out = append(out, r.sources[n])
	}
	return out
}

func (r *Registry) ordered(keep func(string) bool) []string {
	var out []string
	for _, n := range r.order {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}
