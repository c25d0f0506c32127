// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package config loads civicfaq settings.
//
// Settings are layered: built-in defaults, then an optional YAML file, then
// CIVICFAQ_* environment variables (optionally seeded from a .env file), then
// command line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/civicfaq/ai"
)

// Memory backends.
const (
	MemoryLRU    = "lru"
	MemoryBadger = "badger"
)

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	WebRoot string `yaml:"web_root"`
	Metrics bool   `yaml:"metrics"`
}

// DataConfig locates the knowledge base and derived files.
type DataConfig struct {
	FAQPath          string `yaml:"faq_path"`
	CachePath        string `yaml:"cache_path"`
	VocabularyPath   string `yaml:"vocabulary_path"`
	BinSchedulesPath string `yaml:"bin_schedules_path"`
	WatchFAQ         bool   `yaml:"watch_faq"`
	RebuildWorkers   int    `yaml:"rebuild_workers"`
}

// LogConfig locates the append-only chat and feedback logs.
type LogConfig struct {
	Dir string `yaml:"dir"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Backend        string        `yaml:"backend"`
	Model          string        `yaml:"model"`
	APIKey         string        `yaml:"api_key"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	MaxRetryDelay  time.Duration `yaml:"max_retry_delay"`
	Timeout        time.Duration `yaml:"timeout"`
	QueryCacheSize int           `yaml:"query_cache_size"`
}

// DialogueConfig tunes turn resolution.
type DialogueConfig struct {
	Threshold float32 `yaml:"threshold"`
	TopK      int     `yaml:"top_k"`
}

// MemoryConfig selects and sizes the conversation memory.
type MemoryConfig struct {
	Backend    string        `yaml:"backend"`
	Capacity   int           `yaml:"capacity"`
	Shards     int           `yaml:"shards"`
	TTL        time.Duration `yaml:"ttl"`
	BadgerPath string        `yaml:"badger_path"`
}

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Logs      LogConfig       `yaml:"logs"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Dialogue  DialogueConfig  `yaml:"dialogue"`
	Memory    MemoryConfig    `yaml:"memory"`
}

// Default returns the built-in configuration. The embedding base URL has no
// default and must be supplied.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Addr:    ":8080",
			WebRoot: "wwwroot",
			Metrics: true,
		},
		Data: DataConfig{
			FAQPath:        filepath.Join("Data", "faqs.json"),
			CachePath:      filepath.Join("Data", "faqs.embeddings.json"),
			RebuildWorkers: 1,
		},
		Logs: LogConfig{
			Dir: "Logs",
		},
		Embedding: EmbeddingConfig{
			Backend:        string(aiDefaults.Backend),
			Model:          aiDefaults.Model,
			APIKey:         aiDefaults.APIKey,
			MaxRetries:     aiDefaults.MaxRetries,
			RetryDelay:     aiDefaults.RetryDelay,
			MaxRetryDelay:  aiDefaults.MaxRetryDelay,
			Timeout:        aiDefaults.Timeout,
			QueryCacheSize: aiDefaults.QueryCacheSize,
		},
		Dialogue: DialogueConfig{
			Threshold: 0.55,
			TopK:      3,
		},
		Memory: MemoryConfig{
			Backend:    MemoryLRU,
			Capacity:   10000,
			Shards:     16,
			TTL:        30 * time.Minute,
			BadgerPath: filepath.Join("Data", "sessions"),
		},
	}
}

// Load reads a YAML config over the defaults. An empty path or a missing
// file returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are skipped. With no arguments ".env" is tried.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrReadFailed, p, err)
		}
	}
	return nil
}

// Validate checks the configuration for startup-fatal mistakes.
func (c *Config) Validate() error {
	if err := c.AIConfig().Validate(); err != nil {
		return fmt.Errorf("%w: embedding: %w", ErrInvalidConfig, err)
	}
	if c.Dialogue.Threshold <= 0 || c.Dialogue.Threshold > 1 {
		return fmt.Errorf("%w: dialogue.threshold %v outside (0, 1]", ErrInvalidConfig, c.Dialogue.Threshold)
	}
	if c.Dialogue.TopK < 0 {
		return fmt.Errorf("%w: dialogue.top_k must not be negative", ErrInvalidConfig)
	}
	switch c.Memory.Backend {
	case MemoryLRU:
		if c.Memory.Capacity < 1 || c.Memory.Shards < 1 {
			return fmt.Errorf("%w: memory capacity and shards must be positive", ErrInvalidConfig)
		}
	case MemoryBadger:
		if c.Memory.BadgerPath == "" {
			return fmt.Errorf("%w: memory.badger_path is required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown memory backend %q", ErrInvalidConfig, c.Memory.Backend)
	}
	if c.Memory.TTL < 0 {
		return fmt.Errorf("%w: memory.ttl must not be negative", ErrInvalidConfig)
	}
	if c.Data.CachePath == "" {
		return fmt.Errorf("%w: data.cache_path is required", ErrInvalidConfig)
	}
	return nil
}

// AIConfig converts the embedding section into a provider configuration.
func (c *Config) AIConfig() *ai.Config {
	e := c.Embedding
	cfg := ai.NewConfig(
		ai.WithBaseURL(e.BaseURL),
		ai.WithBackend(ai.Backend(e.Backend)),
		ai.WithModel(e.Model),
		ai.WithAPIKey(e.APIKey),
		ai.WithMaxRetries(e.MaxRetries),
		ai.WithRetryDelay(e.RetryDelay),
		ai.WithTimeout(e.Timeout),
		ai.WithQueryCacheSize(e.QueryCacheSize),
	)
	cfg.MaxRetryDelay = e.MaxRetryDelay
	return cfg
}
