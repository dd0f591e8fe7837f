package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/microsoft/vscode-pull-request-github-sub005/internal/errors"
)

func TestTTLCacheGetSet(t *testing.T) {
	c := NewTTLCache[string](time.Minute, 10)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("key", "value")

	got, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestTTLCacheExpiration(t *testing.T) {
	c := NewTTLCache[int](10*time.Millisecond, 10)

	c.Set("key", 42)

	got, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, 42, got)

	time.Sleep(20 * time.Millisecond)

	_, ok = c.Get("key")
	assert.False(t, ok, "entry should have expired")
}

func TestTTLCacheDefaults(t *testing.T) {
	c := NewTTLCache[string](0, 0)

	assert.Equal(t, DefaultTTL, c.ttl)
	assert.Equal(t, DefaultMaxSize, c.maxSize)
}

func TestTTLCacheEviction(t *testing.T) {
	c := NewTTLCache[int](time.Minute, 2)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	assert.Equal(t, 2, c.Size(), "cache must not grow beyond max size")

	got, ok := c.Get("c")
	require.True(t, ok, "newest entry must survive eviction")
	assert.Equal(t, 3, got)
}

func TestTTLCacheGetOrLoad(t *testing.T) {
	c := NewTTLCache[string](time.Minute, 10)

	var calls atomic.Int32

	loader := func() (string, error) {
		calls.Add(1)
		return "loaded", nil
	}

	got, err := c.GetOrLoad("key", loader)
	require.NoError(t, err)
	assert.Equal(t, "loaded", got)

	// Second call must hit the cache, not the loader
	got, err = c.GetOrLoad("key", loader)
	require.NoError(t, err)
	assert.Equal(t, "loaded", got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTTLCacheGetOrLoadError(t *testing.T) {
	c := NewTTLCache[string](time.Minute, 10)

	_, err := c.GetOrLoad("key", func() (string, error) {
		return "", appErrors.ErrTest
	})
	require.ErrorIs(t, err, appErrors.ErrTest)

	// Errors are not cached; a later load must be attempted again
	got, err := c.GetOrLoad("key", func() (string, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
}

func TestTTLCacheGetOrLoadSingleflight(t *testing.T) {
	c := NewTTLCache[int](time.Minute, 10)

	var calls atomic.Int32
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			got, err := c.GetOrLoad("shared", func() (int, error) {
				calls.Add(1)
				time.Sleep(5 * time.Millisecond)
				return 7, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 7, got)
		}()
	}

	close(start)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(2), "concurrent loads for one key should collapse")
}

func TestTTLCacheClearAndStats(t *testing.T) {
	c := NewTTLCache[string](time.Minute, 10)

	c.Set("a", "1")
	_, _ = c.Get("a")
	_, _ = c.Get("missing")

	hits, misses, size := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, 1, size)

	c.Clear()

	hits, misses, size = c.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
	assert.Zero(t, size)
}
