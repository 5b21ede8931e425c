package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/landscape-sim-service/internal/observability"
)

// cachedAdapter wraps an Adapter with a shared in-memory LRU cache keyed by
// source name and rounded coordinates.
type cachedAdapter struct {
	inner   Adapter
	cache   *resultCache
	metrics *observability.Metrics
}

func newCachedAdapter(inner Adapter, cache *resultCache, metrics *observability.Metrics) Adapter {
	return &cachedAdapter{inner: inner, cache: cache, metrics: metrics}
}

func (c *cachedAdapter) Name() string { return c.inner.Name() }

func (c *cachedAdapter) Fetch(ctx context.Context, lat, lon float64) Result {
	key := fmt.Sprintf("%s:%.3f,%.3f", c.inner.Name(), lat, lon)
	if result, ok := c.cache.get(key); ok {
		c.metrics.SourceCache.WithLabelValues("hit").Inc()
		return result
	}
	c.metrics.SourceCache.WithLabelValues("miss").Inc()

	result := c.inner.Fetch(ctx, lat, lon)
	// Only cache successes so transient failures can be retried.
	if result.Success {
		c.cache.put(key, result)
	}
	return result
}

// resultCache is a simple thread-safe LRU cache for adapter Results.
type resultCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value Result
	prev  *entry
	next  *entry
}

func newResultCache(maxEntries int) *resultCache {
	return &resultCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *resultCache) get(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Result{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *resultCache) put(key string, value Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *resultCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *resultCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *resultCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *resultCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
