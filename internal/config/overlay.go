// config/overlay.go
package config

import (
	"strconv"
	"strings"
)

// OverlayEnv applies process-level overrides on top of the YAML file.
// getenv is os.Getenv in production.
func OverlayEnv(cfg *Config, getenv func(string) string) {
	if v := strings.TrimSpace(getenv("ENGINE_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = n
		}
	}
	if v := strings.TrimSpace(getenv("ENGINE_DATA_DIR")); v != "" {
		cfg.App.DataDir = v
	}
	if v := strings.TrimSpace(getenv("LOG_LEVEL")); v != "" {
		cfg.App.LogLevel = v
	}
	if v := strings.TrimSpace(getenv("CACHE_BACKEND")); v != "" {
		cfg.Cache.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv("REDIS_ADDRESS")); v != "" {
		cfg.Cache.Redis.Address = v
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.Redis.Password = v
	}
	// The resume scanner honours a single override model, tried first.
	if v := strings.TrimSpace(getenv("OPENROUTER_RESUME_MODEL")); v != "" {
		cfg.AI.ResumeModels = append([]string{v}, without(cfg.AI.ResumeModels, v)...)
	}
}

func without(xs []string, drop string) []string {
	var out []string
	for _, x := range xs {
		if x != drop {
			out = append(out, x)
		}
	}
	return out
}
