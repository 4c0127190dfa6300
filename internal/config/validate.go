package config

import (
	"fmt"
	"sort"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// KnownSources are the adapter names the registry can build.
var KnownSources = []string{
	"remotive", "remoteok", "himalayas", "openwebninja", "fantastic-jobs",
	"active-intern", "remote-intern", "job-feed-sponsorship", "ycombinator", "h1b",
}

func known(name string) bool {
	for _, k := range KnownSources {
		if k == name {
			return true
		}
	}
	return false
}

// NormalizeAndValidate returns a normalized copy plus what is wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Pinned = trimList(out.Pinned)
	out.AI.ResumeModels = trimList(out.AI.ResumeModels)
	out.AI.LetterModels = trimList(out.AI.LetterModels)
	out.Cache.Backend = strings.ToLower(strings.TrimSpace(out.Cache.Backend))
	if out.Cache.Backend == "" {
		out.Cache.Backend = "memory"
	}

	// Source keys are matched case-sensitively by the registry.
	if len(out.Sources) > 0 {
		srcs := make(map[string]SourceConfig, len(out.Sources))
		for name, s := range out.Sources {
			s.BaseURL = strings.TrimSpace(s.BaseURL)
			s.APIKeyEnv = strings.TrimSpace(s.APIKeyEnv)
			srcs[strings.ToLower(strings.TrimSpace(name))] = s
		}
		out.Sources = srcs
	}

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if strings.TrimSpace(out.App.DataDir) == "" {
		res.addErr("app.data_dir is required")
	}

	if out.HTTP.TimeoutSeconds <= 0 {
		res.addErr("http.timeout_seconds must be > 0")
	} else if out.HTTP.TimeoutSeconds > 120 {
		res.addWarn("http.timeout_seconds is %d; a slow source will hold every search that long.", out.HTTP.TimeoutSeconds)
	}
	if out.HTTP.RatePerSecond < 0 {
		res.addErr("http.rate_per_second must be >= 0")
	}

	switch out.Cache.Backend {
	case "memory":
	case "redis":
		if strings.TrimSpace(out.Cache.Redis.Address) == "" {
			res.addErr("cache.redis.address is required when cache.backend=redis")
		}
	default:
		res.addErr("cache.backend must be memory or redis, got %q", out.Cache.Backend)
	}

	names := make([]string, 0, len(out.Sources))
	for name := range out.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	defaults := 0
	for _, name := range names {
		s := out.Sources[name]
		if !known(name) {
			res.addErr("sources.%s is not a known source", name)
			continue
		}
		if s.TTLSeconds < 0 {
			res.addErr("sources.%s.ttl_seconds must be >= 0", name)
		}
		if s.Limit < 0 {
			res.addErr("sources.%s.limit must be >= 0", name)
		}
		if s.Default && !s.Enabled {
			res.addWarn("sources.%s is marked default but disabled; it will not be queried.", name)
		}
		if s.Enabled && s.Default {
			defaults++
		}
	}
	if defaults == 0 && len(out.Pinned) == 0 {
		res.addErr("no default sources enabled and nothing pinned; searches would always be empty")
	}

	for _, p := range out.Pinned {
		s, ok := out.Sources[p]
		if !ok {
			res.addErr("pinned source %q has no sources entry", p)
			continue
		}
		if !s.Enabled {
			res.addWarn("pinned source %q is disabled and will be skipped.", p)
		}
	}

	if out.Usage.FreeResumeScans < 0 || out.Usage.FreeCoverLetters < 0 {
		res.addErr("usage free limits must be >= 0")
	}
	if out.Usage.ResetDays <= 0 {
		res.addErr("usage.reset_days must be > 0")
	}

	if len(out.AI.ResumeModels) == 0 || len(out.AI.LetterModels) == 0 {
		res.addWarn("ai model lists are empty; resume analysis and cover letters will fail.")
	}

	if out.Warm.Enabled && out.Warm.IntervalSeconds < 60 {
		res.addErr("warm.interval_seconds must be >= 60 when warm.enabled=true")
	}

	return out, res
}
