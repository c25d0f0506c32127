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


package civicfaq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	goretry "github.com/sethvargo/go-retry"
	"github.com/spf13/afero"

	"github.com/poiesic/civicfaq/ai"
	"github.com/poiesic/civicfaq/ai/openai"
	"github.com/poiesic/civicfaq/ai/sidecar"
	"github.com/poiesic/civicfaq/binlookup"
	"github.com/poiesic/civicfaq/config"
	"github.com/poiesic/civicfaq/core"
	"github.com/poiesic/civicfaq/dialogue"
	"github.com/poiesic/civicfaq/embedcache"
	"github.com/poiesic/civicfaq/faq"
	"github.com/poiesic/civicfaq/heuristics"
	"github.com/poiesic/civicfaq/memory"
	"github.com/poiesic/civicfaq/metrics"
	"github.com/poiesic/civicfaq/search"
	"github.com/poiesic/civicfaq/storage"
	"github.com/poiesic/civicfaq/storage/badger"
)

const (
	// DefaultRecoveryDelay is the first wait before retrying a failed startup rebuild.
	DefaultRecoveryDelay = 5 * time.Second

	// DefaultMaxRecoveryDelay caps the wait between background rebuild attempts.
	DefaultMaxRecoveryDelay = 2 * time.Minute

	// DefaultGCInterval is how often the BadgerDB session store reclaims space.
	DefaultGCInterval = 10 * time.Minute
)

// Assistant wires the FAQ corpus, embedding cache, conversation memory and
// dialogue orchestrator together from a config.Config.
type Assistant struct {
	cfg          *config.Config
	fs           afero.Fs
	provider     ai.AIProvider
	cache        *embedcache.Cache
	memory       *memory.Memory
	backend      *badger.Backend
	orchestrator *dialogue.Orchestrator
	schedules    *binlookup.Directory
	metrics      *metrics.Metrics
	logger       *slog.Logger

	// mu guards entries and generation. generation counts index swaps.
	mu         sync.RWMutex
	entries    []core.FAQEntry
	generation uint64

	recoveryDelay    time.Duration
	maxRecoveryDelay time.Duration

	bgCtx    context.Context
	bgCancel context.CancelFunc
	bg       sync.WaitGroup
}

// Option configures an Assistant.
type Option func(*assistantOptions)

type assistantOptions struct {
	provider         ai.AIProvider
	metrics          *metrics.Metrics
	fs               afero.Fs
	progress         io.Writer
	logger           *slog.Logger
	recoveryDelay    time.Duration
	maxRecoveryDelay time.Duration
}

// WithProvider uses provider instead of building one from the config.
// The Assistant takes ownership and closes it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *assistantOptions) {
		o.provider = provider
	}
}

// WithMetrics instruments turns, provider attempts and the index size.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *assistantOptions) {
		o.metrics = m
	}
}

// WithFs sets the filesystem for the FAQ file and embedding cache.
func WithFs(fsys afero.Fs) Option {
	return func(o *assistantOptions) {
		o.fs = fsys
	}
}

// WithProgress reports embedding cache rebuild progress to w.
func WithProgress(w io.Writer) Option {
	return func(o *assistantOptions) {
		o.progress = w
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *assistantOptions) {
		o.logger = logger
	}
}

// WithRecoveryBackoff sets the background rebuild backoff used when the
// embedding provider is unavailable at startup.
func WithRecoveryBackoff(initial, max time.Duration) Option {
	return func(o *assistantOptions) {
		o.recoveryDelay = initial
		o.maxRecoveryDelay = max
	}
}

// NewProvider creates the embedding provider selected by cfg.Backend.
func NewProvider(cfg *ai.Config, opts ...sidecar.Option) (ai.AIProvider, error) {
	cfg.Normalize()
	switch cfg.Backend {
	case ai.BackendOpenAI:
		return openai.NewProvider(cfg)
	case ai.BackendSidecar:
		return sidecar.NewProvider(cfg, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ai.ErrInvalidBackend, cfg.Backend)
	}
}

// Open validates cfg and builds an Assistant.
//
// The FAQ file is loaded and the embedding cache loaded or rebuilt before
// Open returns. If the provider cannot be reached the Assistant still starts
// with an empty index and keeps retrying the rebuild in the background until
// it succeeds or the Assistant is closed. Configuration errors are fatal.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Assistant, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &assistantOptions{
		fs:               afero.NewOsFs(),
		logger:           slog.Default(),
		recoveryDelay:    DefaultRecoveryDelay,
		maxRecoveryDelay: DefaultMaxRecoveryDelay,
	}
	for _, opt := range opts {
		opt(options)
	}

	a := &Assistant{
		cfg:              cfg,
		fs:               options.fs,
		metrics:          options.metrics,
		logger:           options.logger.With("component", "assistant"),
		recoveryDelay:    options.recoveryDelay,
		maxRecoveryDelay: options.maxRecoveryDelay,
	}
	a.bgCtx, a.bgCancel = context.WithCancel(context.Background())

	if err := a.init(ctx, options); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *Assistant) init(ctx context.Context, options *assistantOptions) error {
	vocab := heuristics.DefaultVocabulary()
	if path := a.cfg.Data.VocabularyPath; path != "" {
		loaded, err := heuristics.LoadVocabulary(a.fs, path)
		if err != nil {
			return err
		}
		vocab = loaded
	}

	if path := a.cfg.Data.BinSchedulesPath; path != "" {
		schedules, err := binlookup.Load(a.fs, path)
		if err != nil {
			return err
		}
		a.schedules = schedules
		a.logger.Info("bin schedules loaded", "path", path, "districts", schedules.Len())
	}

	a.provider = options.provider
	if a.provider == nil {
		var sidecarOpts []sidecar.Option
		sidecarOpts = append(sidecarOpts, sidecar.WithLogger(options.logger))
		if a.metrics != nil {
			sidecarOpts = append(sidecarOpts, sidecar.WithAttemptObserver(a.metrics.ObserveProviderAttempt))
		}
		provider, err := NewProvider(a.cfg.AIConfig(), sidecarOpts...)
		if err != nil {
			return err
		}
		a.provider = provider
	}

	queryEmbedder, err := ai.NewCachingEmbedder(a.provider.Embedder(), a.cfg.Embedding.QueryCacheSize)
	if err != nil {
		return err
	}

	if err := a.openMemory(options.logger); err != nil {
		return err
	}

	entries, err := faq.Load(a.fs, a.cfg.Data.FAQPath)
	if err != nil {
		return err
	}
	a.entries = entries
	a.logger.Info("FAQ loaded", "path", a.cfg.Data.FAQPath, "entries", len(entries))

	a.cache, err = embedcache.New(a.cfg.Data.CachePath, a.provider.Embedder(),
		embedcache.WithFs(a.fs),
		embedcache.WithWorkers(a.cfg.Data.RebuildWorkers),
		embedcache.WithProgress(options.progress, embedcache.DefaultProgressInterval),
		embedcache.WithLogger(options.logger),
	)
	if err != nil {
		return err
	}

	orchOpts := []dialogue.Option{
		dialogue.WithThreshold(a.cfg.Dialogue.Threshold),
		dialogue.WithTopK(a.cfg.Dialogue.TopK),
		dialogue.WithVocabulary(vocab),
		dialogue.WithLogger(options.logger),
	}
	if a.schedules != nil {
		orchOpts = append(orchOpts, dialogue.WithSchedules(a.schedules, binlookup.Topic))
	}
	if a.metrics != nil {
		orchOpts = append(orchOpts, dialogue.WithMonitor(a.metrics))
	}
	a.orchestrator, err = dialogue.New(queryEmbedder, a.memory, nil, orchOpts...)
	if err != nil {
		return err
	}

	items, err := a.cache.LoadOrBuild(ctx, entries)
	switch {
	case err == nil:
		a.publish(entries, items)
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		a.logger.Error("embedding cache unavailable, serving with an empty index until the provider recovers", "err", err)
		a.startRecovery()
	}
	return nil
}

func (a *Assistant) openMemory(logger *slog.Logger) error {
	mc := a.cfg.Memory
	var repo storage.SessionRepository

	switch mc.Backend {
	case config.MemoryBadger:
		backend, err := badger.OpenBackend(mc.BadgerPath, false)
		if err != nil {
			return err
		}
		a.backend = backend
		r, err := badger.NewSessionRepository(backend, mc.TTL)
		if err != nil {
			return err
		}
		repo = r
		a.startGarbageCollection()
	default:
		r, err := memory.NewLRURepository(mc.Capacity, mc.Shards, mc.TTL)
		if err != nil {
			return err
		}
		repo = r
	}

	mem, err := memory.New(repo, memory.WithLogger(logger))
	if err != nil {
		return err
	}
	a.memory = mem
	return nil
}

// publish makes entries and their index the served corpus.
func (a *Assistant) publish(entries []core.FAQEntry, items []core.CachedItem) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.publishLocked(entries, items)
}

// publishIf publishes only when no other swap happened since generation gen.
func (a *Assistant) publishIf(gen uint64, entries []core.FAQEntry, items []core.CachedItem) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.generation != gen {
		return false
	}
	a.publishLocked(entries, items)
	return true
}

func (a *Assistant) publishLocked(entries []core.FAQEntry, items []core.CachedItem) {
	a.entries = entries
	a.generation++
	a.orchestrator.SwapIndex(search.NewIndex(items))
	if a.metrics != nil {
		a.metrics.SetIndexEntries(len(items))
	}
}

func (a *Assistant) currentGeneration() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.generation
}

// startRecovery retries the cache build in the background with capped
// exponential backoff until it succeeds, another swap supersedes it or the
// Assistant is closed. Each attempt embeds the corpus current at that time.
func (a *Assistant) startRecovery() {
	startGen := a.currentGeneration()

	a.bg.Add(1)
	go func() {
		defer a.bg.Done()

		backoff := goretry.WithCappedDuration(a.maxRecoveryDelay, goretry.NewExponential(a.recoveryDelay))
		err := goretry.Do(a.bgCtx, backoff, func(ctx context.Context) error {
			if a.currentGeneration() != startGen {
				a.logger.Info("index already replaced, stopping background rebuild")
				return nil
			}

			entries := a.Entries()
			items, err := a.cache.LoadOrBuild(ctx, entries)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				a.logger.Warn("background cache rebuild failed, will retry", "err", err)
				return goretry.RetryableError(err)
			}
			if !a.publishIf(startGen, entries, items) {
				a.logger.Info("index already replaced, discarding background rebuild")
				return nil
			}
			a.logger.Info("embedding index recovered", "entries", len(items))
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("background cache rebuild stopped", "err", err)
		}
	}()
}

func (a *Assistant) startGarbageCollection() {
	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		ticker := time.NewTicker(DefaultGCInterval)
		defer ticker.Stop()
		for {
			select {
			case <-a.bgCtx.Done():
				return
			case <-ticker.C:
				if err := a.backend.CollectGarbage(); err != nil {
					a.logger.Warn("session store garbage collection failed", "err", err)
				}
			}
		}
	}()
}

// HandleTurn resolves one chat turn. See dialogue.Orchestrator.HandleTurn.
func (a *Assistant) HandleTurn(ctx context.Context, sessionID, message string) (core.TurnResult, error) {
	return a.orchestrator.HandleTurn(ctx, sessionID, message)
}

// Orchestrator returns the dialogue orchestrator.
func (a *Assistant) Orchestrator() *dialogue.Orchestrator {
	return a.orchestrator
}

// BinSchedules returns the bin collection directory, or nil when no
// schedule file is configured.
func (a *Assistant) BinSchedules() *binlookup.Directory {
	return a.schedules
}

// Provider returns the embedding provider.
func (a *Assistant) Provider() ai.AIProvider {
	return a.provider
}

// Entries returns the FAQ entries currently loaded.
func (a *Assistant) Entries() []core.FAQEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.entries
}

// IndexSize returns the number of entries in the served index.
func (a *Assistant) IndexSize() int {
	return a.orchestrator.Index().Len()
}

// Reload replaces the corpus with entries, reusing the cache when it still
// matches, and swaps the new index in. On failure the current index stays.
func (a *Assistant) Reload(ctx context.Context, entries []core.FAQEntry) error {
	items, err := a.cache.LoadOrBuild(ctx, entries)
	if err != nil {
		return err
	}
	a.publish(entries, items)
	return nil
}

// RebuildCache re-embeds the current corpus regardless of the cache state.
func (a *Assistant) RebuildCache(ctx context.Context) (int, error) {
	entries := a.Entries()
	items, err := a.cache.Rebuild(ctx, entries)
	if err != nil {
		return 0, err
	}
	a.publish(entries, items)
	return len(items), nil
}

// WatchFAQ reloads the corpus whenever the FAQ file changes, until the
// Assistant is closed.
func (a *Assistant) WatchFAQ() error {
	w, err := faq.NewWatcher(a.cfg.Data.FAQPath, func(ctx context.Context, entries []core.FAQEntry) {
		if err := a.Reload(ctx, entries); err != nil {
			a.logger.Error("FAQ reload failed, keeping current index", "err", err)
			return
		}
		a.logger.Info("FAQ reloaded", "entries", len(entries))
	}, faq.WithWatcherFs(a.fs), faq.WithWatcherLogger(a.logger))
	if err != nil {
		return err
	}

	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		defer w.Close()
		if err := w.Run(a.bgCtx); err != nil {
			a.logger.Error("FAQ watcher stopped", "err", err)
		}
	}()
	return nil
}

// Close stops background work and releases the provider and storage.
func (a *Assistant) Close() error {
	a.bgCancel()
	a.bg.Wait()

	var errs []error
	if a.provider != nil {
		if err := a.provider.Close(); err != nil {
			a.logger.Error("error closing embedding provider", "err", err)
			errs = append(errs, err)
		}
	}
	if a.memory != nil {
		if err := a.memory.Close(); err != nil {
			a.logger.Error("error closing conversation memory", "err", err)
			errs = append(errs, err)
		}
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.logger.Error("error closing session storage", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
