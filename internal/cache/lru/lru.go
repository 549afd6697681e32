// Package lru provides a bounded, strictly recency-ordered cache with
// per-entry TTL. It is private to one process; callers needing cross-process
// sharing layer it over the remote cache.
package lru

import (
	"container/list"
	"sync"
	"time"
)

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[K]*list.Element
	order    *list.List // front is most recently used
	now      func() time.Time
}

func New[K comparable, V any](capacity int, ttl time.Duration) *Cache[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache[K, V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the cached value and promotes the key to most recently used.
// Expired entries are dropped and reported as misses.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	element, ok := c.items[key]
	if !ok {
		return zero, false
	}

	item := element.Value.(*entry[K, V])
	if c.ttl > 0 && c.now().After(item.expiresAt) {
		c.order.Remove(element)
		delete(c.items, key)
		return zero, false
	}

	c.order.MoveToFront(element)
	return item.value, true
}

// Set inserts or replaces a value. Inserting beyond capacity evicts the
// least recently used entry in O(1).
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if element, ok := c.items[key]; ok {
		item := element.Value.(*entry[K, V])
		item.value = value
		item.expiresAt = expiresAt
		c.order.MoveToFront(element)
		return
	}

	if len(c.items) >= c.capacity {
		tail := c.order.Back()
		if tail != nil {
			evicted := tail.Value.(*entry[K, V])
			c.order.Remove(tail)
			delete(c.items, evicted.key)
		}
	}

	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value, expiresAt: expiresAt})
}

// Delete removes a key explicitly, e.g. after a write.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.items[key]
	if !ok {
		return
	}
	c.order.Remove(element)
	delete(c.items, key)
}

func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]*list.Element, c.capacity)
	c.order.Init()
}
