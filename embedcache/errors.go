package embedcache

import "errors"

var (
	// ErrEmbedderRequired is returned when a cache is created without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrPathRequired is returned when a cache is created without a file path.
	ErrPathRequired = errors.New("cache path is required")

	// ErrCacheMissing is returned by Load when no usable cache file exists.
	ErrCacheMissing = errors.New("embedding cache missing")

	// ErrCacheStale is returned by Load when the cache does not match the entries.
	ErrCacheStale = errors.New("embedding cache stale")

	// ErrCacheCorrupt is returned by Load when the cache file cannot be parsed.
	ErrCacheCorrupt = errors.New("embedding cache corrupt")

	// ErrRebuildFailed is returned when an entry could not be embedded.
	ErrRebuildFailed = errors.New("embedding cache rebuild failed")
)
