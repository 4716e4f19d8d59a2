// Package thumbcache keeps per-page preview thumbnails in a bounded
// LRU+TTL store. Thumbnails are expensive to render and cheap to evict:
// the cache holds at most Capacity entries, drops entries unread for
// longer than TTL, and when full evicts the entry with the lowest
// access count, ties broken by oldest access time.
//
// Thumbnails are reference-counted Handles. The cache owns one
// reference per stored entry and releases it on eviction, expiry,
// replacement, or Clear. Callers of Get and Set only borrow the handle;
// they Retain their own reference if they keep it.
package thumbcache

import (
	"time"

	"github.com/pagedeck/pagedeck/observability"
)

const (
	// DefaultCapacity bounds the number of live thumbnails.
	DefaultCapacity = 50
	// DefaultTTL is the absolute expiry age for an unread entry.
	DefaultTTL = 30 * time.Minute
)

// Config configures a Cache. The zero value is usable: defaults are
// applied in New.
type Config struct {
	Capacity int
	TTL      time.Duration
	Logger   observability.Logger

	// Now overrides the clock, for tests.
	Now func() time.Time
}

type entry struct {
	key         Key
	handle      *Handle
	lastAccess  time.Time
	accessCount int
}

// Cache is a bounded LRU+TTL thumbnail store. Not safe for concurrent
// use.
type Cache struct {
	cfg     Config
	entries map[Key]*entry
}

// New constructs a Cache, applying defaults for unset Config fields.
func New(cfg Config) *Cache {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.NopLogger{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Cache{cfg: cfg, entries: make(map[Key]*entry)}
}

// Get returns the cached handle for key, or nil,false on a miss. An
// entry past its TTL counts as a miss and is released on the spot. A
// hit bumps the entry's access count and timestamp. The returned
// handle is borrowed; Retain it to keep it beyond the next cache
// mutation.
func (c *Cache) Get(key Key) (*Handle, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	now := c.cfg.Now()
	if now.Sub(e.lastAccess) > c.cfg.TTL {
		c.drop(e, "expired")
		return nil, false
	}
	e.accessCount++
	e.lastAccess = now
	return e.handle, true
}

// Set stores handle under key, taking ownership of the caller's
// reference. Replacing an existing key releases the old handle. At
// capacity the eviction victim is chosen by lowest access count, ties
// broken by oldest access time.
func (c *Cache) Set(key Key, handle *Handle) {
	if old, ok := c.entries[key]; ok {
		c.drop(old, "replaced")
	}
	if len(c.entries) >= c.cfg.Capacity {
		if victim := c.victim(); victim != nil {
			c.drop(victim, "evicted")
		}
	}
	c.entries[key] = &entry{
		key:        key,
		handle:     handle,
		lastAccess: c.cfg.Now(),
	}
}

// victim picks the eviction candidate: lowest access count, ties broken
// by oldest access time. Linear scan; the cache is small.
func (c *Cache) victim() *entry {
	var v *entry
	for _, e := range c.entries {
		if v == nil {
			v = e
			continue
		}
		if e.accessCount < v.accessCount ||
			(e.accessCount == v.accessCount && e.lastAccess.Before(v.lastAccess)) {
			v = e
		}
	}
	return v
}

func (c *Cache) drop(e *entry, reason string) {
	delete(c.entries, e.key)
	e.handle.Release()
	c.cfg.Logger.Debug("thumbnail dropped",
		observability.String("reason", reason),
		observability.Int64("key", int64(e.key)))
}

// Len returns the number of live entries.
func (c *Cache) Len() int { return len(c.entries) }

// Contains reports whether key is present, without touching access
// statistics or TTL.
func (c *Cache) Contains(key Key) bool {
	_, ok := c.entries[key]
	return ok
}

// Clear releases every handle and empties the cache.
func (c *Cache) Clear() {
	for _, e := range c.entries {
		e.handle.Release()
	}
	c.entries = make(map[Key]*entry)
}
