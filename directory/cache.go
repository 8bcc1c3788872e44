package directory

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// defaultCacheCapacity is the default number of decoded value/entry stores
// a DirectoryPack keeps resident.
const defaultCacheCapacity = 16

// cache is a bounded LRU generalizing cluster.Cache to an arbitrary
// comparable key and value, for DirectoryPack's value-store and
// entry-store caches: a miss decodes at most once even when raced by
// multiple goroutines requesting the same key concurrently, while
// concurrent requests for disjoint keys proceed in parallel.
type cache[K comparable, V any] struct {
	lru    *lru.Cache[K, V]
	load   func(K) (V, error)
	single singleflight.Group
}

// newCache builds a cache of the given capacity (defaultCacheCapacity when
// capacity <= 0), resolving misses through load.
func newCache[K comparable, V any](capacity int, load func(K) (V, error)) *cache[K, V] {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}

	l, err := lru.New[K, V](capacity)
	if err != nil {
		// lru.New only rejects a non-positive size, already excluded above.
		panic(err)
	}

	return &cache[K, V]{lru: l, load: load}
}

// Get returns the value for key, loading and caching it on a miss.
func (c *cache[K, V]) Get(key K) (V, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}

	keyStr := fmt.Sprint(key)
	v, err, _ := c.single.Do(keyStr, func() (any, error) {
		if v, ok := c.lru.Get(key); ok {
			return v, nil
		}

		v, err := c.load(key)
		if err != nil {
			return nil, err
		}
		c.lru.Add(key, v)

		return v, nil
	})
	if err != nil {
		var zero V

		return zero, err
	}

	return v.(V), nil
}
