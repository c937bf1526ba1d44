package imagemap

import (
	"fmt"

	"github.com/lumenforge/lux/cache"
)

// MapCache deduplicates ImageMap loads by file path, the way a scene's
// mesh/texture libraries deduplicate repeated asset references. Backed by
// the shared sharded LRU cache so repeated lookups of the same map (a
// common pattern when many materials reference one texture) stay cheap
// under concurrent access from worker-pool render threads.
type MapCache struct {
	entries *cache.ShardedCache[string, *ImageMap]
}

// NewMapCache creates an image-map cache with the given per-shard capacity.
func NewMapCache(capacity int) *MapCache {
	return &MapCache{entries: cache.NewSharded[string, *ImageMap](capacity, cache.StringHasher)}
}

// GetOrLoad returns the cached map for key, loading it with loader on miss.
// loader errors are not cached; the next GetOrLoad call retries.
func (c *MapCache) GetOrLoad(key string, loader func() (*ImageMap, error)) (*ImageMap, error) {
	if im, ok := c.entries.Get(key); ok {
		return im, nil
	}
	im, err := loader()
	if err != nil {
		return nil, fmt.Errorf("imagemap: load %q: %w", key, err)
	}
	c.entries.Set(key, im)
	return im, nil
}

// Delete evicts a cached map by key.
func (c *MapCache) Delete(key string) bool { return c.entries.Delete(key) }

// Clear empties the cache.
func (c *MapCache) Clear() { c.entries.Clear() }

// Len reports the number of cached maps.
func (c *MapCache) Len() int { return c.entries.Len() }
