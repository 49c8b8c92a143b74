// Package pipecache is an optional content-addressed cache of render
// pipelines keyed by an FNV-1a hash of their full description.
//
// The device does not use it unless asked to. Without it every draw builds
// and retires its own pipeline.
package pipecache

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/wgpu/hal"
)

// Entry is a cached pipeline and the layout it was built with.
type Entry struct {
	Layout   hal.PipelineLayout
	Pipeline hal.RenderPipeline
}

// Cache maps description hashes to pipelines.
//
// Cache is safe for concurrent use. It uses RWMutex with double-check
// locking, the same way the lookup path is split into a read-locked fast
// path and a write-locked slow path.
type Cache struct {
	mu      sync.RWMutex
	entries map[uint64]Entry

	hits   uint64
	misses uint64
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[uint64]Entry)}
}

// GetOrCreate returns the entry for key, calling create on a miss.
// The second result reports whether the entry came from the cache.
func (c *Cache) GetOrCreate(key uint64, create func() (Entry, error)) (Entry, bool, error) {
	c.mu.RLock()
	if e, ok := c.entries[key]; ok {
		c.mu.RUnlock()
		atomic.AddUint64(&c.hits, 1)
		return e, true, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		atomic.AddUint64(&c.hits, 1)
		return e, true, nil
	}

	e, err := create()
	if err != nil {
		return Entry{}, false, err
	}
	c.entries[key] = e
	atomic.AddUint64(&c.misses, 1)
	return e, false, nil
}

// Stats returns the hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

// Len returns the number of cached pipelines.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// DestroyAll releases every cached pipeline and layout and empties the cache.
// The GPU must be idle.
func (c *Cache) DestroyAll(device hal.Device) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if e.Pipeline != nil {
			device.DestroyRenderPipeline(e.Pipeline)
		}
		if e.Layout != nil {
			device.DestroyPipelineLayout(e.Layout)
		}
		delete(c.entries, key)
	}
}
