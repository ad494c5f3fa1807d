package gateway

import (
	"sync"
	"time"

	"beacon-dashboard/internal/domain"
)

// Cache is a single-slot store for the last good snapshot. A failed fetch
// never reaches it, so the slot only ever holds data that came back whole.
type Cache struct {
	mu  sync.RWMutex
	ttl time.Duration

	snap domain.Snapshot
	at   time.Time
	ok   bool
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl}
}

func (c *Cache) TTL() time.Duration { return c.ttl }

// Fresh returns the snapshot when one exists and is younger than the TTL.
func (c *Cache) Fresh(now time.Time) (domain.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.ok || now.Sub(c.at) >= c.ttl {
		return domain.Snapshot{}, false
	}
	return c.snap, true
}

// Stale returns whatever the slot holds, regardless of age.
func (c *Cache) Stale() (domain.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap, c.ok
}

func (c *Cache) Store(s domain.Snapshot, at time.Time) {
	c.mu.Lock()
	c.snap = s
	c.at = at
	c.ok = true
	c.mu.Unlock()
}

func (c *Cache) Age(now time.Time) (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.ok {
		return 0, false
	}
	return now.Sub(c.at), true
}
