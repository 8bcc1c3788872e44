package cluster

import (
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/arloliu/jubako/format"
)

// DefaultCacheCapacity is the default number of decoded Clusters a Cache
// keeps resident, per Content pack.
const DefaultCacheCapacity = 20

// Loader opens the Cluster identified by idx on a cache miss, typically by
// looking up idx's SizedOffset in a Content pack's cluster_ptr table and
// calling Open.
type Loader func(idx format.ClusterIdx) (*Cluster, error)

// Cache is the bounded LRU Clusters are materialised through, one per
// Content pack. A miss decodes at most once even when raced by multiple
// goroutines requesting the same ClusterIdx concurrently; concurrent
// requests for disjoint clusters proceed in parallel.
type Cache struct {
	lru    *lru.Cache[format.ClusterIdx, *Cluster]
	load   Loader
	single singleflight.Group
}

// NewCache builds a Cache of the given capacity (DefaultCacheCapacity when
// capacity <= 0), resolving misses through load.
func NewCache(capacity int, load Loader) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}

	c, err := lru.New[format.ClusterIdx, *Cluster](capacity)
	if err != nil {
		// lru.New only rejects a non-positive size, already excluded above.
		panic(err)
	}

	return &Cache{lru: c, load: load}
}

// Get returns the Cluster for idx, opening and caching it on a miss.
func (c *Cache) Get(idx format.ClusterIdx) (*Cluster, error) {
	if cl, ok := c.lru.Get(idx); ok {
		return cl, nil
	}

	key := strconv.FormatUint(uint64(idx), 10)
	v, err, _ := c.single.Do(key, func() (any, error) {
		if cl, ok := c.lru.Get(idx); ok {
			return cl, nil
		}

		cl, err := c.load(idx)
		if err != nil {
			return nil, err
		}
		c.lru.Add(idx, cl)

		return cl, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Cluster), nil
}

// Len reports the number of Clusters currently resident.
func (c *Cache) Len() int { return c.lru.Len() }

// Purge evicts every cached Cluster.
func (c *Cache) Purge() { c.lru.Purge() }
