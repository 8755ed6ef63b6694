package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUBasicOperations(t *testing.T) {
	c := NewLRU[int](3)

	assert.True(t, c.Set("a", 1))
	assert.True(t, c.Set("b", 2))
	assert.False(t, c.Set("a", 10), "updating existing key is not an insert")

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(1), c.Stats().Hits())
	assert.Equal(t, int64(1), c.Stats().Misses())
}

func TestLRUEviction(t *testing.T) {
	var evictedKeys []string
	c := NewLRU[int](2).OnEvict(func(key string, _ int) {
		evictedKeys = append(evictedKeys, key)
	})

	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so "b" is least recently used.
	c.Get("a")

	c.Set("c", 3)
	assert.Equal(t, []string{"b"}, evictedKeys)
	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Contains("a"))
	assert.False(t, c.Contains("b"))
	assert.True(t, c.Contains("c"))
	assert.Equal(t, int64(1), c.Stats().Evictions())
}

func TestLRUClear(t *testing.T) {
	c := NewLRU[string](4)
	c.Set("a", "x")
	c.Set("b", "y")

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Contains("a"))
}

func TestLRUConcurrentAccess(t *testing.T) {
	c := NewLRU[int](64)

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("key-%d", i%100)
				c.Set(key, worker)
				c.Get(key)
			}
		}(worker)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 64)
}
