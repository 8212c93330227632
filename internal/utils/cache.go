package utils

import (
	"io/fs"
	"sync"
	"time"
)

// CacheItem is a cached value with the file metadata it was built from
type CacheItem[V any] struct {
	Value   V
	ModTime time.Time
	Size    int64
}

// Cache is a concurrency-safe cache whose entries are invalidated when the
// file they came from changes size or modification time
type Cache[K comparable, V any] struct {
	items  map[K]*CacheItem[V]
	mutex  sync.RWMutex
	hits   int
	misses int
}

// NewCache creates a new generic cache
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]*CacheItem[V]),
	}
}

// Get retrieves an item without validation
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if item, exists := c.items[key]; exists {
		return item.Value, true
	}
	var zero V
	return zero, false
}

// GetValid retrieves an item if info still matches the file it was stored
// with. A stale item is removed.
func (c *Cache[K, V]) GetValid(key K, info fs.FileInfo) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	item, exists := c.items[key]
	if exists && item.ModTime.Equal(info.ModTime()) && item.Size == info.Size() {
		c.hits++
		return item.Value, true
	}
	if exists {
		delete(c.items, key)
	}
	c.misses++

	var zero V
	return zero, false
}

// SetWithFileInfo stores an item along with the file metadata used to validate it
func (c *Cache[K, V]) SetWithFileInfo(key K, value V, info fs.FileInfo) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = &CacheItem[V]{
		Value:   value,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}
}

// Delete removes an item from the cache
func (c *Cache[K, V]) Delete(key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *Cache[K, V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[K]*CacheItem[V])
	c.hits, c.misses = 0, 0
}

// Size returns the number of items in the cache
func (c *Cache[K, V]) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}

// GetStats returns cache statistics
func (c *Cache[K, V]) GetStats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return CacheStats{Size: len(c.items), Hits: c.hits, Misses: c.misses}
}

// CacheStats provides cache statistics
type CacheStats struct {
	Size   int
	Hits   int
	Misses int
}
