// Package ledger holds the live, owner-scoped cache of transactions and the
// subscription manager that keeps it in sync with the remote store.
package ledger

import (
	"sync"

	"fintrack/internal/core"
)

// Cache is the single source of truth for all derived views: the latest
// complete snapshot delivered by the subscription, and nothing else. It
// never transforms or validates records; each delivery replaces its
// contents atomically.
type Cache struct {
	mu       sync.RWMutex
	snapshot []core.Transaction
	loading  bool
	err      error
}

func NewCache() *Cache {
	return &Cache{}
}

// Current returns the latest snapshot. Callers must treat it as read-only;
// the slice is replaced wholesale on the next delivery, never mutated.
func (c *Cache) Current() []core.Transaction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Loading reports whether the first snapshot for the current owner is
// still outstanding.
func (c *Cache) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err returns the last subscription failure, or nil. A failure leaves the
// last-known snapshot in place rather than silently clearing data.
func (c *Cache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// reset prepares the cache for a new owner: old data gone, loading until
// the first snapshot arrives.
func (c *Cache) reset() {
	c.mu.Lock()
	c.snapshot = nil
	c.loading = true
	c.err = nil
	c.mu.Unlock()
}

// clear empties the cache when no owner is signed in.
func (c *Cache) clear() {
	c.mu.Lock()
	c.snapshot = nil
	c.loading = false
	c.err = nil
	c.mu.Unlock()
}

func (c *Cache) replace(snapshot []core.Transaction) {
	c.mu.Lock()
	c.snapshot = snapshot
	c.loading = false
	c.err = nil
	c.mu.Unlock()
}

func (c *Cache) fail(err error) {
	c.mu.Lock()
	c.loading = false
	c.err = err
	c.mu.Unlock()
}
