// engine/internal/config/config.go
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type App struct {
	Port     int    `yaml:"port" json:"port"`
	DataDir  string `yaml:"data_dir" json:"data_dir"`
	LogLevel string `yaml:"log_level" json:"log_level"`
}

type HTTP struct {
	TimeoutSeconds int     `yaml:"timeout_seconds" json:"timeout_seconds"`
	UserAgent      string  `yaml:"user_agent" json:"user_agent"`
	RatePerSecond  float64 `yaml:"rate_per_second" json:"rate_per_second"`
	Burst          int     `yaml:"burst" json:"burst"`
}

type Redis struct {
	Address   string `yaml:"address" json:"address"`
	Password  string `yaml:"password" json:"-"`
	DB        int    `yaml:"db" json:"db"`
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix"`
}

type Cache struct {
	// Backend is "memory" or "redis".
	Backend string `yaml:"backend" json:"backend"`
	Redis   Redis  `yaml:"redis" json:"redis"`
}

// SourceConfig tunes one adapter. Zero values fall back to the adapter's
// built-in defaults.
type SourceConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	Default    bool   `yaml:"default" json:"default"`
	TTLSeconds int    `yaml:"ttl_seconds" json:"ttl_seconds"`
	Limit      int    `yaml:"limit" json:"limit"`
	BaseURL    string `yaml:"base_url" json:"base_url"`
	APIKeyEnv  string `yaml:"api_key_env" json:"api_key_env"`
}

func (s SourceConfig) TTL() time.Duration {
	return time.Duration(s.TTLSeconds) * time.Second
}

type Usage struct {
	FreeResumeScans  int `yaml:"free_resume_scans" json:"free_resume_scans"`
	FreeCoverLetters int `yaml:"free_cover_letters" json:"free_cover_letters"`
	ResetDays        int `yaml:"reset_days" json:"reset_days"`
}

type AI struct {
	BaseURL        string   `yaml:"base_url" json:"base_url"`
	APIKeyEnv      string   `yaml:"api_key_env" json:"api_key_env"`
	ResumeModels   []string `yaml:"resume_models" json:"resume_models"`
	LetterModels   []string `yaml:"letter_models" json:"letter_models"`
	TimeoutSeconds int      `yaml:"timeout_seconds" json:"timeout_seconds"`
}

type Warm struct {
	Enabled         bool     `yaml:"enabled" json:"enabled"`
	IntervalSeconds int      `yaml:"interval_seconds" json:"interval_seconds"`
	Queries         []string `yaml:"queries" json:"queries"`
}

type Config struct {
	App     App                     `yaml:"app" json:"app"`
	HTTP    HTTP                    `yaml:"http" json:"http"`
	Cache   Cache                   `yaml:"cache" json:"cache"`
	Sources map[string]SourceConfig `yaml:"sources" json:"sources"`
	// Pinned sources are queried on every request regardless of the
	// caller's source selection.
	Pinned []string `yaml:"pinned" json:"pinned"`
	Usage  Usage    `yaml:"usage" json:"usage"`
	AI     AI       `yaml:"ai" json:"ai"`
	Warm   Warm     `yaml:"warm" json:"warm"`
}

// Default mirrors config/config.yml so a missing or partial file still
// produces a runnable engine.
func Default() Config {
	return Config{
		App:   App{Port: 38471, DataDir: "data", LogLevel: "info"},
		HTTP:  HTTP{TimeoutSeconds: 20, RatePerSecond: 2, Burst: 4},
		Cache: Cache{Backend: "memory"},
		Sources: map[string]SourceConfig{
			"remotive":             {Enabled: true, Default: true},
			"remoteok":             {Enabled: true, Default: true},
			"openwebninja":         {Enabled: true, Default: true},
			"fantastic-jobs":       {Enabled: true, Default: true, APIKeyEnv: "ACTIVE_JOBS_API_KEY"},
			"himalayas":            {Enabled: true},
			"active-intern":        {Enabled: true, APIKeyEnv: "ACTIVE_INTERN_API_KEY"},
			"remote-intern":        {Enabled: true, APIKeyEnv: "REMOTE_JOB_INTERN_API_KEY"},
			"job-feed-sponsorship": {Enabled: true, APIKeyEnv: "JOB_FEED_SPONSORSHIP_API_KEY"},
			"ycombinator":          {Enabled: true, APIKeyEnv: "YCOMBINATOR_API_KEY"},
			"h1b":                  {Enabled: true},
		},
		Pinned: []string{"h1b"},
		Usage:  Usage{FreeResumeScans: 3, FreeCoverLetters: 3, ResetDays: 30},
		AI: AI{
			BaseURL:        "https://openrouter.ai/api/v1",
			APIKeyEnv:      "OPENROUTER_API_KEY",
			ResumeModels:   []string{"google/gemini-2.0-flash-exp:free", "meta-llama/llama-3.2-3b-instruct:free", "openai/gpt-4o-mini"},
			LetterModels:   []string{"google/gemini-2.0-flash-exp:free", "openai/gpt-4o-mini"},
			TimeoutSeconds: 60,
		},
		Warm: Warm{IntervalSeconds: 1800, Queries: []string{""}},
	}
}

// Load reads path over Default(). Keys absent from the file keep their
// default; a sources entry present in the file replaces the default entry.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// DefaultSources lists enabled sources flagged as part of the default set.
func (c Config) DefaultSources() []string {
	var out []string
	for name, s := range c.Sources {
		if s.Enabled && s.Default {
			out = append(out, name)
		}
	}
	return out
}
