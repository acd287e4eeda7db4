package webapp

import (
	"sync"
	"time"

	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// Defaults for the in-memory wizard cache.
const (
	DefaultMaxInstances = 10000
	DefaultInstanceTTL  = 30 * time.Minute
)

type instance struct {
	wz       *wizard.Wizard
	lastUsed time.Time
}

// instances holds live wizards by id. Dropping one loses nothing durable:
// drafts live in the progress store and are restored on the next request.
type instances struct {
	mu      sync.Mutex
	entries map[string]*instance
	max     int
	ttl     time.Duration
	now     func() time.Time
}

func newInstances(max int, ttl time.Duration) *instances {
	if max <= 0 {
		max = DefaultMaxInstances
	}
	if ttl <= 0 {
		ttl = DefaultInstanceTTL
	}
	return &instances{
		entries: make(map[string]*instance),
		max:     max,
		ttl:     ttl,
		now:     time.Now,
	}
}

// get returns the live wizard for id and marks it used.
func (c *instances) get(id string) (*wizard.Wizard, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	entry.lastUsed = c.now()
	return entry.wz, true
}

// add stores wz under id unless another request stored one first, in which
// case that one is returned. Idle entries are dropped first, then the least
// recently used while the cache is full.
func (c *instances) add(id string, wz *wizard.Wizard) *wizard.Wizard {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if entry, ok := c.entries[id]; ok {
		entry.lastUsed = now
		return entry.wz
	}
	c.expireLocked(now)
	for len(c.entries) >= c.max {
		c.evictOldestLocked()
	}
	c.entries[id] = &instance{wz: wz, lastUsed: now}
	return wz
}

// cleanup drops entries idle for longer than the ttl and reports how many.
func (c *instances) cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expireLocked(c.now())
}

func (c *instances) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *instances) expireLocked(now time.Time) int {
	removed := 0
	for id, entry := range c.entries {
		if now.Sub(entry.lastUsed) > c.ttl {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

func (c *instances) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, entry := range c.entries {
		if oldestID == "" || entry.lastUsed.Before(oldest) {
			oldestID, oldest = id, entry.lastUsed
		}
	}
	delete(c.entries, oldestID)
}
