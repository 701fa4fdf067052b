// Package cache keeps compiled expressions keyed by their source text.
//
// Compiling an expression parses and resolves it; the result is immutable
// and may be shared freely, so a process that evaluates the same queries
// against many documents can compile each of them once.
//
//	c := cache.New(1024)
//	expr, err := c.GetOrCompile(src, func() (*types.Expression, error) {
//	    return compiler.Compile(src)
//	})
package cache

import (
	"container/list"
	"sync"

	"github.com/sandrolain/jsonata/pkg/types"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 256

type entry struct {
	src  string
	expr *types.Expression
}

// Stats counts cache lookups.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is a least-recently-used cache of compiled expressions. It is safe
// for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front is most recently used
	index    map[string]*list.Element
	stats    Stats
}

// New returns an empty cache holding at most capacity expressions.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[string]*list.Element, capacity),
	}
}

// Get returns the expression compiled from src, if present.
func (c *Cache) Get(src string) (*types.Expression, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[src]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	c.order.MoveToFront(el)
	return el.Value.(*entry).expr, true
}

// Set stores expr under src, evicting the least recently used expression
// when the cache is full.
func (c *Cache) Set(src string, expr *types.Expression) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[src]; ok {
		el.Value.(*entry).expr = expr
		c.order.MoveToFront(el)
		return
	}
	for c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.index, oldest.Value.(*entry).src)
		c.stats.Evictions++
	}
	c.index[src] = c.order.PushFront(&entry{src: src, expr: expr})
}

// GetOrCompile returns the cached expression for src or compiles and
// stores it. Compile errors are returned and not cached. Two goroutines
// missing on the same src may both compile it; the last one stored wins.
func (c *Cache) GetOrCompile(src string, compile func() (*types.Expression, error)) (*types.Expression, error) {
	if expr, ok := c.Get(src); ok {
		return expr, nil
	}
	expr, err := compile()
	if err != nil {
		return nil, err
	}
	c.Set(src, expr)
	return expr, nil
}

// Len returns the number of cached expressions.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Capacity returns the maximum number of cached expressions.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Stats returns a snapshot of the lookup counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Invalidate drops the expression compiled from src.
func (c *Cache) Invalidate(src string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[src]; ok {
		c.order.Remove(el)
		delete(c.index, src)
	}
}

// Clear drops every expression and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.index = make(map[string]*list.Element, c.capacity)
	c.stats = Stats{}
}
