package embedding

import (
	"container/list"
	"sync"
)

// Cache is a thread-safe LRU cache of embedding vectors keyed by
// (model_id, content_hash). It sits in front of a vector store to avoid
// repeated lookups for hot chunks.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[cacheKey]*list.Element
}

type cacheKey struct {
	modelID     string
	contentHash string
}

type cacheEntry struct {
	key    cacheKey
	vector []float64
}

// NewCache creates a cache holding up to capacity vectors. A non-positive
// capacity defaults to 1024.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[cacheKey]*list.Element),
	}
}

// Get returns the cached vector for the key, marking it most recently used.
func (c *Cache) Get(modelID, contentHash string) ([]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[cacheKey{modelID, contentHash}]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).vector, true
}

// Put stores a vector, evicting the least recently used entry when full.
func (c *Cache) Put(modelID, contentHash string, vector []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey{modelID, contentHash}
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).vector = vector
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, vector: vector})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

// Len returns the number of cached vectors.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
