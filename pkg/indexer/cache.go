package indexer

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/ngtags/pkg/component"
)

// DefaultCacheSize bounds the number of files whose descriptors are retained
// between scans.
const DefaultCacheSize = 4096

// cacheEntry is the extraction result of one file at one content hash.
//
// ModulePath is part of the validity check: a component file whose content did
// not change still needs rebuilding when a module file appears above it.
type cacheEntry struct {
	Hash        string
	ModulePath  string
	Descriptors []*component.Descriptor
}

// DescriptorCache keeps the descriptors of recently extracted files so that a
// full rescan only re-parses files whose content changed.
//
// **Thread Safety:** the underlying LRU is synchronized; counters are atomic.
type DescriptorCache struct {
	entries *lru.Cache[string, cacheEntry]
	logger  *slog.Logger

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Entries   int     `json:"entries"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

// NewDescriptorCache creates a cache holding up to size files (DefaultCacheSize
// when size <= 0).
func NewDescriptorCache(size int, logger *slog.Logger) (*DescriptorCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &DescriptorCache{logger: logger}
	entries, err := lru.NewWithEvict(size, func(path string, _ cacheEntry) {
		c.evictions.Add(1)
		logger.Debug("evicted cached descriptors", "file", path)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	c.entries = entries
	return c, nil
}

// Get returns the cached descriptors for path when both the content hash and
// the owning module still match.
func (c *DescriptorCache) Get(path, hash, modulePath string) ([]*component.Descriptor, bool) {
	entry, ok := c.entries.Get(path)
	if !ok || entry.Hash != hash || entry.ModulePath != modulePath {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return entry.Descriptors, true
}

// Put records the descriptors extracted from path at the given hash.
func (c *DescriptorCache) Put(path, hash, modulePath string, descriptors []*component.Descriptor) {
	c.entries.Add(path, cacheEntry{Hash: hash, ModulePath: modulePath, Descriptors: descriptors})
}

// Invalidate drops path from the cache.
func (c *DescriptorCache) Invalidate(path string) {
	c.entries.Remove(path)
}

// GetStats returns a snapshot of the cache counters.
func (c *DescriptorCache) GetStats() CacheStats {
	hits, misses := c.hits.Load(), c.misses.Load()
	stats := CacheStats{
		Entries:   c.entries.Len(),
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
	}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats
}
