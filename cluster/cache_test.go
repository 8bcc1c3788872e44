package cluster

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/jubako/format"
)

func TestCacheLoadsOnceAndReusesCachedEntry(t *testing.T) {
	var loads int32
	cluster := &Cluster{}

	cache := NewCache(DefaultCacheCapacity, func(idx format.ClusterIdx) (*Cluster, error) {
		atomic.AddInt32(&loads, 1)

		return cluster, nil
	})

	got, err := cache.Get(5)
	require.NoError(t, err)
	require.Same(t, cluster, got)

	got, err = cache.Get(5)
	require.NoError(t, err)
	require.Same(t, cluster, got)

	require.EqualValues(t, 1, atomic.LoadInt32(&loads))
	require.Equal(t, 1, cache.Len())
}

func TestCacheDeduplicatesConcurrentMisses(t *testing.T) {
	var loads int32
	cache := NewCache(DefaultCacheCapacity, func(idx format.ClusterIdx) (*Cluster, error) {
		atomic.AddInt32(&loads, 1)

		return &Cluster{}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get(1)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, atomic.LoadInt32(&loads))
}
