package embedding

import (
	"container/list"
	"sync"

	"github.com/halcyonco/chatvault/pkg/vector"
)

// DefaultCacheSize is the cache capacity used when none is configured.
const DefaultCacheSize = 1024

// Cache is a bounded LRU cache of computed embeddings keyed by the source
// text. It is advisory only: the store is the system of record, and the cache
// may be cleared at any time without loss of correctness.
//
// Vectors are copied on both Put and Get so a reader can never observe a
// partially written or later-mutated entry.
type Cache struct {
	capacity int

	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List
}

type cacheEntry struct {
	key   string
	value vector.Vector
}

// NewCache creates a cache holding at most capacity entries. A non-positive
// capacity falls back to DefaultCacheSize.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns a copy of the cached vector for key if present, promoting the
// entry to most recently used.
func (c *Cache) Get(key string) (vector.Vector, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.lru.MoveToFront(elem)
	return vector.Clone(elem.Value.(*cacheEntry).value), true
}

// Put stores a copy of v under key, evicting the least recently used entry
// when the cache is at capacity. Putting an existing key replaces its value
// and promotes it.
func (c *Cache) Put(key string, v vector.Vector) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = vector.Clone(v)
		return
	}

	elem := c.lru.PushFront(&cacheEntry{key: key, value: vector.Clone(v)})
	c.entries[key] = elem

	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Clear removes all entries. Concurrent readers see either the old entry or
// a miss, never a torn value.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.lru.Init()
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Len()
}
