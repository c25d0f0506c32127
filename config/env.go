package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CIVICFAQ_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type binding struct {
	key   string
	apply func(c *Config, value string) error
}

func stringVar(dst func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*dst(c) = v
		return nil
	}
}

func intVar(dst func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst(c) = n
		return nil
	}
}

func boolVar(dst func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst(c) = b
		return nil
	}
}

// durationVar accepts Go durations ("300ms") or a bare number of milliseconds.
func durationVar(dst func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		if ms, err := strconv.Atoi(v); err == nil {
			*dst(c) = time.Duration(ms) * time.Millisecond
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst(c) = d
		return nil
	}
}

var bindings = []binding{
	{"ADDR", stringVar(func(c *Config) *string { return &c.Server.Addr })},
	{"WEB_ROOT", stringVar(func(c *Config) *string { return &c.Server.WebRoot })},
	{"METRICS", boolVar(func(c *Config) *bool { return &c.Server.Metrics })},
	{"FAQ_PATH", stringVar(func(c *Config) *string { return &c.Data.FAQPath })},
	{"CACHE_PATH", stringVar(func(c *Config) *string { return &c.Data.CachePath })},
	{"VOCABULARY_PATH", stringVar(func(c *Config) *string { return &c.Data.VocabularyPath })},
	{"BIN_SCHEDULES_PATH", stringVar(func(c *Config) *string { return &c.Data.BinSchedulesPath })},
	{"WATCH_FAQ", boolVar(func(c *Config) *bool { return &c.Data.WatchFAQ })},
	{"REBUILD_WORKERS", intVar(func(c *Config) *int { return &c.Data.RebuildWorkers })},
	{"LOG_DIR", stringVar(func(c *Config) *string { return &c.Logs.Dir })},
	{"EMBEDDING_BASE_URL", stringVar(func(c *Config) *string { return &c.Embedding.BaseURL })},
	{"EMBEDDING_BACKEND", stringVar(func(c *Config) *string { return &c.Embedding.Backend })},
	{"EMBEDDING_MODEL", stringVar(func(c *Config) *string { return &c.Embedding.Model })},
	{"EMBEDDING_API_KEY", stringVar(func(c *Config) *string { return &c.Embedding.APIKey })},
	{"MAX_RETRIES", intVar(func(c *Config) *int { return &c.Embedding.MaxRetries })},
	{"RETRY_DELAY", durationVar(func(c *Config) *time.Duration { return &c.Embedding.RetryDelay })},
	{"EMBEDDING_TIMEOUT", durationVar(func(c *Config) *time.Duration { return &c.Embedding.Timeout })},
	{"QUERY_CACHE_SIZE", intVar(func(c *Config) *int { return &c.Embedding.QueryCacheSize })},
	{"THRESHOLD", func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return err
		}
		c.Dialogue.Threshold = float32(f)
		return nil
	}},
	{"TOP_K", intVar(func(c *Config) *int { return &c.Dialogue.TopK })},
	{"MEMORY_BACKEND", stringVar(func(c *Config) *string { return &c.Memory.Backend })},
	{"MEMORY_CAPACITY", intVar(func(c *Config) *int { return &c.Memory.Capacity })},
	{"MEMORY_TTL", durationVar(func(c *Config) *time.Duration { return &c.Memory.TTL })},
	{"MEMORY_BADGER_PATH", stringVar(func(c *Config) *string { return &c.Memory.BadgerPath })},
}

// ApplyEnv overrides settings from CIVICFAQ_* variables found by lookup.
// A nil lookup reads the process environment. Blank values are ignored.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, b := range bindings {
		v, ok := lookup(EnvPrefix + b.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if err := b.apply(c, strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("%w: %s%s=%q: %w", ErrInvalidEnv, EnvPrefix, b.key, v, err)
		}
	}
	return nil
}
