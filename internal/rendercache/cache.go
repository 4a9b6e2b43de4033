// Package rendercache keeps recently rendered artifacts (WAV clips, charts)
// so repeated requests skip the synthesis.
package rendercache

import (
	"sync"
	"time"
)

const (
	DefaultMaxEntries    = 128
	DefaultTTL           = 10 * time.Minute
	MaxConcurrentRenders = 3
)

// RenderFunc produces the bytes for a key on a miss.
type RenderFunc func() ([]byte, error)

// Cache stores rendered bytes with LRU eviction and a TTL.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	order   []string // LRU order (oldest first)
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	// Renders in flight; later callers for the same key wait on them.
	pending map[string]*call
	sem     chan struct{}

	hits, misses uint64
}

type entry struct {
	data       []byte
	renderedAt time.Time
}

type call struct {
	done chan struct{}
	data []byte
	err  error
}

// New creates a cache. Non-positive arguments take the defaults.
func New(maxSize int, ttl time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]*entry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		pending: make(map[string]*call),
		sem:     make(chan struct{}, MaxConcurrentRenders),
	}
}

// Get returns the cached bytes for key, or nil on a miss or expiry.
func (c *Cache) Get(key string) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(key)
}

func (c *Cache) lookup(key string) []byte {
	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	if c.now().Sub(e.renderedAt) > c.ttl {
		c.remove(key)
		return nil
	}
	c.touch(key)
	return e.data
}

// GetOrRender returns the cached bytes for key, rendering them with fn on
// a miss. Concurrent misses for one key share a single render. Errors are
// not cached.
func (c *Cache) GetOrRender(key string, fn RenderFunc) ([]byte, error) {
	c.mu.Lock()
	if data := c.lookup(key); data != nil {
		c.hits++
		c.mu.Unlock()
		return data, nil
	}
	c.misses++
	if p, ok := c.pending[key]; ok {
		c.mu.Unlock()
		<-p.done
		return p.data, p.err
	}
	p := &call{done: make(chan struct{})}
	c.pending[key] = p
	c.mu.Unlock()

	c.sem <- struct{}{}
	p.data, p.err = fn()
	<-c.sem

	c.mu.Lock()
	delete(c.pending, key)
	if p.err == nil {
		c.store(key, p.data)
	}
	c.mu.Unlock()
	close(p.done)

	return p.data, p.err
}

func (c *Cache) store(key string, data []byte) {
	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}
	for len(c.entries) >= c.maxSize {
		c.evict()
	}
	c.entries[key] = &entry{data: data, renderedAt: c.now()}
	c.order = append(c.order, key)
}

// touch moves key to the newest end of the LRU order.
func (c *Cache) touch(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.order = append(c.order, key)
}

func (c *Cache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// evict removes the least recently used entry
func (c *Cache) evict() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

// Size returns the current number of entries
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns hit and miss counters.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
