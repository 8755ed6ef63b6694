// Package cache provides a generic, thread-safe LRU cache with statistics.
//
// The platform uses it wherever a bounded recently-seen set is needed, most
// notably the gossip loopback's duplicate suppression. Statistics are always
// collected; observability is not optional.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// Statistics tracks cache effectiveness.
type Statistics struct {
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64
}

// Hits returns the number of lookups that found an entry.
func (s *Statistics) Hits() int64 { return s.hits.Load() }

// Misses returns the number of lookups that found nothing.
func (s *Statistics) Misses() int64 { return s.misses.Load() }

// Sets returns the number of insertions and updates.
func (s *Statistics) Sets() int64 { return s.sets.Load() }

// Evictions returns the number of entries evicted by capacity.
func (s *Statistics) Evictions() int64 { return s.evictions.Load() }

// EvictCallback is invoked with each entry evicted by capacity.
type EvictCallback[V any] func(key string, value V)

// lruEntry represents an entry in the LRU cache.
type lruEntry[V any] struct {
	key   string
	value V
}

// LRU is a thread-safe least-recently-used cache. It evicts the least
// recently used entry when the maximum size is exceeded.
type LRU[V any] struct {
	mu      sync.Mutex
	maxSize int
	items   map[string]*list.Element
	order   *list.List
	stats   *Statistics
	evictFn EvictCallback[V]
}

// NewLRU creates an LRU cache holding at most maxSize entries.
func NewLRU[V any](maxSize int) *LRU[V] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRU[V]{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		order:   list.New(),
		stats:   &Statistics{},
	}
}

// OnEvict installs a callback invoked with each capacity eviction.
func (c *LRU[V]) OnEvict(fn EvictCallback[V]) *LRU[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictFn = fn
	return c
}

// Get retrieves a value by key and marks it as recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, exists := c.items[key]
	if !exists {
		var zero V
		c.stats.misses.Add(1)
		return zero, false
	}

	c.order.MoveToFront(element)
	c.stats.hits.Add(1)
	return element.Value.(*lruEntry[V]).value, true
}

// Contains reports whether the key is cached, marking it recently used.
func (c *LRU[V]) Contains(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Set stores a value, marking it recently used. Returns true if the key
// was newly inserted rather than updated.
func (c *LRU[V]) Set(key string, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.sets.Add(1)

	if element, exists := c.items[key]; exists {
		element.Value.(*lruEntry[V]).value = value
		c.order.MoveToFront(element)
		return false
	}

	element := c.order.PushFront(&lruEntry[V]{key: key, value: value})
	c.items[key] = element

	if len(c.items) > c.maxSize {
		c.evictLRU()
	}
	return true
}

// evictLRU removes the least recently used entry. Caller holds the lock.
func (c *LRU[V]) evictLRU() {
	element := c.order.Back()
	if element == nil {
		return
	}
	entry := element.Value.(*lruEntry[V])
	c.order.Remove(element)
	delete(c.items, entry.key)
	c.stats.evictions.Add(1)
	if c.evictFn != nil {
		c.evictFn(entry.key, entry.value)
	}
}

// Len returns the number of cached entries.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes all entries without invoking eviction callbacks.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// Stats returns the cache statistics.
func (c *LRU[V]) Stats() *Statistics { return c.stats }
