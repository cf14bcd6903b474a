// Package cache provides an in-memory key/value store with optional
// per-entry expiration. It is shared process-wide by the enrichment and
// pipeline layers, which coordinate purely through the key scheme.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Cache maps string keys to values of type V. Entries written with a
// positive TTL become unobservable once their deadline passes; a janitor
// goroutine reclaims the memory behind them on a fixed sweep interval.
// Safe for concurrent use.
type Cache[V any] struct {
	clock clockwork.Clock

	mu      sync.Mutex
	entries map[string]entry[V]

	stopOnce sync.Once
	done     chan struct{}
}

type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiry
}

// Stats is a point-in-time snapshot of cache contents, for observability only.
type Stats struct {
	Size int
	Keys []string
}

// New creates a Cache sweeping expired entries every sweepInterval.
// A non-positive sweepInterval disables the janitor; expired entries are
// then reclaimed only when read.
func New[V any](clock clockwork.Clock, sweepInterval time.Duration) *Cache[V] {
	c := &Cache[V]{
		clock:   clock,
		entries: make(map[string]entry[V]),
		done:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go c.janitor(sweepInterval)
	}
	return c
}

// Set inserts or replaces the value for key. A positive ttl schedules the
// entry's expiry; otherwise the entry persists until deleted or cleared.
// Replacing an entry always installs the new write's deadline — a TTL from
// an earlier write never outlives the write it belonged to.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	e := entry[V]{value: value}
	if ttl > 0 {
		e.expiresAt = c.clock.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// Get returns the live value for key. It does not extend the entry's TTL.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.expired(e) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Has reports whether key holds a live value.
func (c *Cache[V]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes key, reporting whether a live value existed.
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	delete(c.entries, key)
	return ok && !c.expired(e)
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()
}

// Stats snapshots the live entry count and keys.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for k, e := range c.entries {
		if !c.expired(e) {
			keys = append(keys, k)
		}
	}
	return Stats{Size: len(keys), Keys: keys}
}

// Stop terminates the janitor. Entries remain readable afterwards.
func (c *Cache[V]) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

func (c *Cache[V]) expired(e entry[V]) bool {
	return !e.expiresAt.IsZero() && !c.clock.Now().Before(e.expiresAt)
}

func (c *Cache[V]) janitor(interval time.Duration) {
	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.Chan():
			c.sweep()
		}
	}
}

func (c *Cache[V]) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
		}
	}
}
