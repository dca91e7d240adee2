// internal/cache/lru.go
//
// Small LRU cache used by the catalog to memoize filter/sort results and by
// the view to hold parsed template sets.  Safe for concurrent use;
// good for a few thousand entries.
package cache

import (
	"container/list"
	"sync"
)

// LRU is a least-recently-used cache with a fixed capacity.
type LRU[K comparable, V any] struct {
	mu      sync.Mutex
	cap     int
	ll      *list.List
	dict    map[K]*list.Element
	onEvict func(K, V)
}

type pair[K comparable, V any] struct {
	key K
	val V
}

// New returns an LRU with the given capacity.  Panics on cap < 1.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 1 {
		panic("cache: capacity must be ≥1")
	}
	return &LRU[K, V]{
		cap:  capacity,
		ll:   list.New(),
		dict: make(map[K]*list.Element, capacity),
	}
}

// OnEvict registers fn to run (outside the lock) for entries dropped by
// capacity pressure or Remove.
func (c *LRU[K, V]) OnEvict(fn func(K, V)) { c.onEvict = fn }

// Get retrieves a value and marks it MRU.
func (c *LRU[K, V]) Get(key K) (val V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, hit := c.dict[key]; hit {
		c.ll.MoveToFront(ele)
		return ele.Value.(pair[K, V]).val, true
	}
	return val, false
}

// Add inserts or updates a value.
func (c *LRU[K, V]) Add(key K, val V) {
	c.mu.Lock()
	if ele, hit := c.dict[key]; hit {
		ele.Value = pair[K, V]{key, val}
		c.ll.MoveToFront(ele)
		c.mu.Unlock()
		return
	}
	c.dict[key] = c.ll.PushFront(pair[K, V]{key, val})

	var evicted *pair[K, V]
	if c.ll.Len() > c.cap {
		last := c.ll.Back()
		c.ll.Remove(last)
		p := last.Value.(pair[K, V])
		delete(c.dict, p.key)
		evicted = &p
	}
	c.mu.Unlock()

	if evicted != nil && c.onEvict != nil {
		c.onEvict(evicted.key, evicted.val)
	}
}

// Remove deletes key and reports whether it was present.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	ele, hit := c.dict[key]
	if hit {
		c.ll.Remove(ele)
		delete(c.dict, key)
	}
	c.mu.Unlock()

	if hit && c.onEvict != nil {
		p := ele.Value.(pair[K, V])
		c.onEvict(p.key, p.val)
	}
	return hit
}

// Range calls fn for every entry from most to least recently used.  fn must
// not call back into the cache.
func (c *LRU[K, V]) Range(fn func(K, V) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for e := c.ll.Front(); e != nil; e = e.Next() {
		p := e.Value.(pair[K, V])
		if !fn(p.key, p.val) {
			return
		}
	}
}

// Purge drops every entry without calling the eviction hook.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	c.ll.Init()
	c.dict = make(map[K]*list.Element, c.cap)
	c.mu.Unlock()
}

// Len reports current size.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
