// Package cache provides a thread-safe LRU cache of optimizer output.
//
// The cache is used by esopt.Engine when the WithCacheSize option is set.
// Optimizing the same program twice with the same options yields the same
// text, so repeated sources (bundles rebuilt by a watcher, a REPL history)
// skip the parse and every pass.
//
// # Example
//
//	c := cache.New(1024)
//	res, err := c.GetOrOptimize(cache.Key(src, "rounds=100"), optimize)
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Result is one cached optimization outcome.
type Result struct {
	Code    string
	Rounds  int
	Changes int
}

type entry struct {
	key string
	res Result
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits   uint64
	Misses uint64
	Len    int
}

// Cache is a thread-safe LRU (Least Recently Used) cache for optimized
// programs. Once the capacity is reached, the least recently accessed entry
// is evicted.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
	hits     uint64
	misses   uint64
}

// New creates a new LRU cache with the given capacity.
// capacity must be > 0; if <= 0, a default of 256 is used.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Key derives a fixed-size cache key from the source text and a fingerprint
// of the options that affect the output.
func Key(src, fingerprint string) string {
	h := sha256.New()
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write([]byte(src))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a result and marks it most recently used.
func (c *Cache) Get(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return Result{}, false
	}
	c.hits++
	c.ll.MoveToFront(el)
	return el.Value.(*entry).res, true
}

// Set inserts or replaces a result.
// If at capacity, the least recently used entry is evicted first.
func (c *Cache) Set(key string, res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).res = res
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}
	c.items[key] = c.ll.PushFront(&entry{key: key, res: res})
}

// GetOrOptimize returns the result for key, calling optimize and caching
// its result on a miss. Errors are not cached.
func (c *Cache) GetOrOptimize(key string, optimize func() (Result, error)) (Result, error) {
	if res, ok := c.Get(key); ok {
		return res, nil
	}
	res, err := optimize()
	if err != nil {
		return Result{}, err
	}
	c.Set(key, res)
	return res, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Stats returns hit and miss counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Len: len(c.items)}
}

// Invalidate removes a single entry from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Clear removes all entries and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
	c.hits, c.misses = 0, 0
}

// evictLocked removes the least recently used entry.
// Must be called with c.mu held.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}
