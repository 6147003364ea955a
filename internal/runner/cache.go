package runner

import (
	"slices"
	"sync"
	"time"
)

// ProjectCache keeps the last project listing for a while. Running the
// session manager spawns a Ruby process, which is too slow to do on every
// keystroke.
//
// Entries have a TTL so projects created outside the launcher show up
// eventually. A config reload invalidates the cache immediately.
type ProjectCache struct {
	mu       sync.RWMutex
	projects []string
	cachedAt time.Time
	valid    bool
	ttl      time.Duration

	now func() time.Time
}

// NewProjectCache creates a cache with the given TTL.
// A TTL of 0 disables caching.
func NewProjectCache(ttl time.Duration) *ProjectCache {
	return &ProjectCache{ttl: ttl, now: time.Now}
}

// Lookup returns the cached projects if they are still fresh.
func (c *ProjectCache) Lookup() ([]string, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.valid {
		return nil, false
	}
	// TTL expired: force a new listing
	if c.now().Sub(c.cachedAt) > c.ttl {
		return nil, false
	}
	return slices.Clone(c.projects), true
}

// Store saves a listing.
func (c *ProjectCache) Store(projects []string) {
	if c == nil || c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.projects = slices.Clone(projects)
	c.cachedAt = c.now()
	c.valid = true
}

// Invalidate drops the cached listing.
func (c *ProjectCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.projects = nil
	c.valid = false
	c.mu.Unlock()
}
