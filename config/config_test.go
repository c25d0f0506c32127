package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/civicfaq/ai"
)

func mapLookup(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, float32(0.55), cfg.Dialogue.Threshold)
	assert.Equal(t, 5, cfg.Embedding.MaxRetries)
	assert.Equal(t, 300*time.Millisecond, cfg.Embedding.RetryDelay)
	assert.Empty(t, cfg.Embedding.BaseURL)
	assert.Equal(t, MemoryLRU, cfg.Memory.Backend)
}

func TestValidate_MissingBaseURLIsFatal(t *testing.T) {
	err := Default().Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, ai.ErrMissingBaseURL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Embedding.BaseURL = "http://127.0.0.1:8001"
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold too high", func(c *Config) { c.Dialogue.Threshold = 1.2 }},
		{"zero threshold", func(c *Config) { c.Dialogue.Threshold = 0 }},
		{"negative threshold", func(c *Config) { c.Dialogue.Threshold = -0.3 }},
		{"negative top k", func(c *Config) { c.Dialogue.TopK = -1 }},
		{"zero retries", func(c *Config) { c.Embedding.MaxRetries = 0 }},
		{"unknown backend", func(c *Config) { c.Embedding.Backend = "grpc" }},
		{"unknown memory", func(c *Config) { c.Memory.Backend = "redis" }},
		{"badger without path", func(c *Config) { c.Memory.Backend = MemoryBadger; c.Memory.BadgerPath = "" }},
		{"no cache path", func(c *Config) { c.Data.CachePath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "civicfaq.yaml")
	data := `
server:
  addr: ":9090"
embedding:
  base_url: http://127.0.0.1:8001
  retry_delay: 150ms
dialogue:
  threshold: 0.6
memory:
  backend: badger
  ttl: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "http://127.0.0.1:8001", cfg.Embedding.BaseURL)
	assert.Equal(t, 150*time.Millisecond, cfg.Embedding.RetryDelay)
	assert.Equal(t, float32(0.6), cfg.Dialogue.Threshold)
	assert.Equal(t, MemoryBadger, cfg.Memory.Backend)
	assert.Equal(t, time.Hour, cfg.Memory.TTL)
	// Untouched sections keep defaults.
	assert.Equal(t, 5, cfg.Embedding.MaxRetries)
	assert.Equal(t, "wwwroot", cfg.Server.WebRoot)
	require.NoError(t, cfg.Validate())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: ["), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(mapLookup(map[string]string{
		"CIVICFAQ_EMBEDDING_BASE_URL": "http://sidecar:8001",
		"CIVICFAQ_MAX_RETRIES":        "3",
		"CIVICFAQ_RETRY_DELAY":        "250",
		"CIVICFAQ_MEMORY_TTL":         "2h",
		"CIVICFAQ_THRESHOLD":          "0.7",
		"CIVICFAQ_WATCH_FAQ":          "true",
		"CIVICFAQ_BIN_SCHEDULES_PATH": "/srv/schedules.json",
		"CIVICFAQ_ADDR":               "  ",
	}))
	require.NoError(t, err)

	assert.Equal(t, "http://sidecar:8001", cfg.Embedding.BaseURL)
	assert.Equal(t, 3, cfg.Embedding.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.Embedding.RetryDelay)
	assert.Equal(t, 2*time.Hour, cfg.Memory.TTL)
	assert.InDelta(t, 0.7, float64(cfg.Dialogue.Threshold), 1e-6)
	assert.True(t, cfg.Data.WatchFAQ)
	assert.Equal(t, "/srv/schedules.json", cfg.Data.BinSchedulesPath)
	assert.Equal(t, ":8080", cfg.Server.Addr, "blank values are ignored")
}

func TestApplyEnv_InvalidValue(t *testing.T) {
	err := Default().ApplyEnv(mapLookup(map[string]string{"CIVICFAQ_MAX_RETRIES": "many"}))
	assert.ErrorIs(t, err, ErrInvalidEnv)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CIVICFAQ_TEST_DOTENV=from-file\n"), 0o644))
	t.Setenv("CIVICFAQ_TEST_DOTENV", "")
	os.Unsetenv("CIVICFAQ_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("CIVICFAQ_TEST_DOTENV"))
}

func TestAIConfig(t *testing.T) {
	cfg := Default()
	cfg.Embedding.BaseURL = "http://localhost:11434/"
	cfg.Embedding.Backend = string(ai.BackendOpenAI)

	aiCfg := cfg.AIConfig()
	require.NoError(t, aiCfg.Validate())
	assert.Equal(t, "http://localhost:11434/v1", aiCfg.BaseURL)
	assert.Equal(t, cfg.Embedding.MaxRetries, aiCfg.MaxRetries)
}
