package config

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadShippedConfigIsValid(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "config.yml"))
	require.NoError(t, err)

	_, vr := NormalizeAndValidate(cfg)
	assert.True(t, vr.OK(), "errors: %v", vr.Errors)

	got := cfg.DefaultSources()
	sort.Strings(got)
	assert.Equal(t, []string{"fantastic-jobs", "openwebninja", "remoteok", "remotive"}, got)
	assert.Equal(t, []string{"h1b"}, cfg.Pinned)
	assert.Equal(t, "ACTIVE_JOBS_API_KEY", cfg.Sources["fantastic-jobs"].APIKeyEnv)
}

func TestDefaultIsValid(t *testing.T) {
	_, vr := NormalizeAndValidate(Default())
	assert.True(t, vr.OK(), "errors: %v", vr.Errors)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(p, []byte("app:\n  port: 9000\nsources:\n  remotive:\n    enabled: true\n    default: true\n    ttl_seconds: 30\n"), 0o644))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, 20, cfg.HTTP.TimeoutSeconds)
	assert.Equal(t, 30*time.Second, cfg.Sources["remotive"].TTL())
	assert.True(t, cfg.Sources["himalayas"].Enabled)
}

func TestOverlayEnv(t *testing.T) {
	env := map[string]string{
		"ENGINE_PORT":             "8081",
		"LOG_LEVEL":               "debug",
		"CACHE_BACKEND":           "Redis",
		"REDIS_ADDRESS":           "localhost:6379",
		"OPENROUTER_RESUME_MODEL": "openai/gpt-4o-mini",
	}
	cfg := Default()
	OverlayEnv(&cfg, func(k string) string { return env[k] })

	assert.Equal(t, 8081, cfg.App.Port)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "localhost:6379", cfg.Cache.Redis.Address)
	assert.Equal(t, "openai/gpt-4o-mini", cfg.AI.ResumeModels[0])
	assert.Len(t, cfg.AI.ResumeModels, 3)
}

func TestOverlayEnvIgnoresBadPort(t *testing.T) {
	cfg := Default()
	OverlayEnv(&cfg, func(k string) string {
		if k == "ENGINE_PORT" {
			return "abc"
		}
		return ""
	})
	assert.Equal(t, 38471, cfg.App.Port)
}

func TestNormalizeAndValidate(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = " REDIS "
	cfg.Pinned = []string{"h1b", " H1B ", ""}
	cfg.Sources["Remotive "] = SourceConfig{Enabled: true, Default: true}
	delete(cfg.Sources, "remotive")
	cfg.Sources["monster"] = SourceConfig{Enabled: true}
	cfg.Sources["himalayas"] = SourceConfig{Default: true}

	out, vr := NormalizeAndValidate(cfg)
	assert.Equal(t, "redis", out.Cache.Backend)
	assert.Equal(t, []string{"h1b"}, out.Pinned)
	assert.Contains(t, out.Sources, "remotive")

	assert.False(t, vr.OK())
	assert.Contains(t, vr.Errors, "cache.redis.address is required when cache.backend=redis")
	assert.Contains(t, vr.Errors, "sources.monster is not a known source")
	assert.Contains(t, vr.Warnings, "sources.himalayas is marked default but disabled; it will not be queried.")
}

func TestValidateRequiresSomethingToQuery(t *testing.T) {
	cfg := Default()
	for name, s := range cfg.Sources {
		s.Default = false
		cfg.Sources[name] = s
	}
	cfg.Pinned = nil

	_, vr := NormalizeAndValidate(cfg)
	assert.False(t, vr.OK())
}

func TestSaveAtomicKeepsBackup(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cfg", "config.yml")
	cfg := Default()
	require.NoError(t, SaveAtomic(p, cfg))

	cfg.App.Port = 9001
	require.NoError(t, SaveAtomic(p, cfg))

	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 9001, got.App.Port)

	bak, err := Load(p + ".bak")
	require.NoError(t, err)
	assert.Equal(t, 38471, bak.App.Port)

	cfg.App.Port = 0
	assert.Error(t, SaveAtomic(p, cfg))
}

func TestEnsureUserConfig(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "default.yml")
	require.NoError(t, os.WriteFile(def, []byte("app:\n  port: 7000\n"), 0o644))

	data := filepath.Join(dir, "data")
	p, err := EnsureUserConfig(data, def)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(data, "config.yml"), p)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.App.Port)

	// Existing user config is left alone.
	require.NoError(t, os.WriteFile(def, []byte("app:\n  port: 7001\n"), 0o644))
	_, err = EnsureUserConfig(data, def)
	require.NoError(t, err)
	cfg, _ = Load(p)
	assert.Equal(t, 7000, cfg.App.Port)
}

func TestEnsureUserConfigWithoutDefaultFile(t *testing.T) {
	data := t.TempDir()
	p, err := EnsureUserConfig(data, filepath.Join(data, "missing.yml"))
	require.NoError(t, err)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, Default().App.Port, cfg.App.Port)
}
