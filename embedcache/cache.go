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


package embedcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/civicfaq/ai"
	"github.com/poiesic/civicfaq/core"
	"github.com/spf13/afero"
)

const (
	// DefaultWorkers embeds entries one at a time.
	DefaultWorkers = 1

	// DefaultProgressInterval reports progress every N embedded entries.
	DefaultProgressInterval = 10
)

// Cache loads and rebuilds the persisted embedding set for an FAQ corpus.
// A Cache is safe for concurrent use; rebuilds are serialized.
type Cache struct {
	path     string
	fs       afero.Fs
	embedder ai.Embedder
	workers  int
	progress io.Writer
	interval int
	logger   *slog.Logger

	rebuildMu sync.Mutex
}

// Option configures a Cache.
type Option func(*Cache) error

// WithFs sets the filesystem the cache file lives on.
// Default is the operating system filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(c *Cache) error {
		if fsys == nil {
			fsys = afero.NewOsFs()
		}
		c.fs = fsys
		return nil
	}
}

// WithWorkers sets how many entries are embedded concurrently during a rebuild.
// Default is 1, values below 1 are treated as 1.
func WithWorkers(n int) Option {
	return func(c *Cache) error {
		if n < 1 {
			n = 1
		}
		c.workers = n
		return nil
	}
}

// WithProgress writes rebuild progress to w every interval entries.
func WithProgress(w io.Writer, interval int) Option {
	return func(c *Cache) error {
		c.progress = w
		c.interval = interval
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// New creates a cache stored at path that embeds entries with embedder.
func New(path string, embedder ai.Embedder, opts ...Option) (*Cache, error) {
	if path == "" {
		return nil, ErrPathRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	c := &Cache{
		path:     path,
		fs:       afero.NewOsFs(),
		embedder: embedder,
		workers:  DefaultWorkers,
		interval: DefaultProgressInterval,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "embedding-cache", "path", path)

	return c, nil
}

// Path returns the location of the cache file.
func (c *Cache) Path() string {
	return c.path
}

// LoadOrBuild returns one embedding per entry, in entry order. The persisted
// cache is used when it matches entries; otherwise every entry is embedded
// again and the result persisted. Failing to persist is logged and ignored.
func (c *Cache) LoadOrBuild(ctx context.Context, entries []core.FAQEntry) ([]core.CachedItem, error) {
	items, err := c.Load(entries)
	if err == nil {
		c.logger.Info("embedding cache accepted", "entries", len(items))
		return items, nil
	}

	if errors.Is(err, ErrCacheMissing) {
		c.logger.Info("no embedding cache found, building", "entries", len(entries))
	} else {
		c.logger.Warn("embedding cache unusable, rebuilding", "reason", err, "entries", len(entries))
	}

	return c.Rebuild(ctx, entries)
}

// Load reads the persisted cache and pairs its embeddings with entries.
// The returned items carry the given entries, so edits to fields outside the
// fingerprint (keywords, links, responses) are visible without a rebuild.
// Returns ErrCacheMissing, ErrCacheCorrupt or ErrCacheStale when the cache
// cannot be used.
func (c *Cache) Load(entries []core.FAQEntry) ([]core.CachedItem, error) {
	data, err := afero.ReadFile(c.fs, c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrCacheMissing
		}
		return nil, fmt.Errorf("%w: %w", ErrCacheCorrupt, err)
	}
	if len(data) == 0 {
		return nil, ErrCacheMissing
	}

	var set core.CachedEmbeddingSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheCorrupt, err)
	}
	if set.Items == nil {
		return nil, fmt.Errorf("%w: no items", ErrCacheCorrupt)
	}

	if want := Fingerprint(entries); set.Fingerprint != want {
		return nil, fmt.Errorf("%w: fingerprint mismatch", ErrCacheStale)
	}
	if len(set.Items) != len(entries) {
		return nil, fmt.Errorf("%w: %d cached items for %d entries", ErrCacheStale, len(set.Items), len(entries))
	}

	items := make([]core.CachedItem, len(entries))
	for i := range entries {
		items[i] = core.CachedItem{FAQ: entries[i], Embedding: set.Items[i].Embedding}
		items[i].FAQ.Sanitize()
		if items[i].Embedding == nil {
			items[i].Embedding = core.Embedding{}
		}
	}
	return items, nil
}

// Rebuild embeds every entry and persists the new set, ignoring any existing cache.
// Results are ordered by entry position regardless of completion order.
// An embedding failure aborts the rebuild with an error wrapping
// ai.ErrProviderUnavailable; nothing is persisted in that case.
func (c *Cache) Rebuild(ctx context.Context, entries []core.FAQEntry) ([]core.CachedItem, error) {
	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items, err := c.embedAll(ctx, entries)
	if err != nil {
		return nil, err
	}

	set := core.CachedEmbeddingSet{
		Fingerprint: Fingerprint(entries),
		Items:       items,
	}
	if err := c.persist(&set); err != nil {
		c.logger.Warn("failed to persist embedding cache, continuing with in-memory embeddings", "err", err)
	}

	return items, nil
}

func (c *Cache) embedAll(ctx context.Context, entries []core.FAQEntry) ([]core.CachedItem, error) {
	items := make([]core.CachedItem, len(entries))
	if len(entries) == 0 {
		return items, nil
	}

	pool, err := ants.NewPool(c.workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	tracker := newProgressTracker(c.progress, len(entries), c.interval)
	tracker.start()
	defer tracker.finish()

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i := range entries {
		entry := entries[i]
		entry.Sanitize()
		idx := i

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}

			vec, err := c.embedder.EmbedText(ctx, entry.EmbeddingText())
			if err != nil {
				fail(embedError(&entry, err))
				return
			}
			if vec == nil {
				vec = core.Embedding{}
			}

			items[idx] = core.CachedItem{FAQ: entry, Embedding: vec}
			tracker.increment()
		})
		if submitErr != nil {
			wg.Done()
			fail(submitErr)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}

	c.logger.Info("embedding cache rebuilt", "entries", len(items), "elapsed", tracker.elapsed())
	return items, nil
}

func embedError(entry *core.FAQEntry, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, ai.ErrProviderUnavailable) {
		return fmt.Errorf("%w: %s/%s: %w", ErrRebuildFailed, entry.Service, entry.Title, err)
	}
	return fmt.Errorf("%w: %s/%s: %w: %w", ErrRebuildFailed, entry.Service, entry.Title, ai.ErrProviderUnavailable, err)
}

// persist writes set to a temporary file and renames it over the cache path.
func (c *Cache) persist(set *core.CachedEmbeddingSet) error {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(c.path); dir != "." && dir != "" {
		if err := c.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := c.path + ".tmp"
	if err := afero.WriteFile(c.fs, tmp, data, 0o644); err != nil {
		return err
	}
	if err := c.fs.Rename(tmp, c.path); err != nil {
		_ = c.fs.Remove(tmp)
		return err
	}
	return nil
}
