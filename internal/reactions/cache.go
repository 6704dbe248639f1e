// package reactions implements the TTL cache of per-slide reaction
// lists with optimistic local mutation and rollback support.
package reactions

import (
	"sync"
	"time"
)

const (
	// DefaultTTL is how long a fetched reaction list stays fresh.
	DefaultTTL = 5 * time.Minute
	// DefaultCapacity bounds the number of cached slides. Eviction is
	// insertion-order, not LRU: the first key stored is the first
	// evicted, regardless of access.
	DefaultCapacity = 100
)

// Reaction mirrors the wire reaction record. Kept local to avoid a
// dependency cycle with callers that decorate the models type.
type Reaction struct {
	Emoji        string
	FromUserID   string
	FromUserName string
	ToUserID     string
	ContextType  string
	ContextID    string
	CreatedAt    int64
}

// UpdateAction selects the optimistic mutation applied to a cached list.
type UpdateAction int

const (
	ActionAdd UpdateAction = iota
	ActionRemove
)

// Meta carries the synthesized fields for an optimistic add.
type Meta struct {
	FromUserName string
	ToUserID     string
	ContextType  string
	ContextID    string
}

type entry struct {
	reactions []Reaction
	storedAt  time.Time
	ttl       time.Duration
}

// Cache is a capacity-bounded TTL cache keyed by slide fingerprint.
// The source of truth is the backend; the cache exists so the UI can
// apply reactions optimistically and roll back on send failure.
//
// Guarded by a mutex: hub callbacks and the UI loop run on separate
// goroutines.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[string]*entry
	order    []string // insertion order for eviction
	now      func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithCapacity overrides the default key capacity.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithTTL overrides the default entry TTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a reaction cache with the given options.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		capacity: DefaultCapacity,
		ttl:      DefaultTTL,
		entries:  map[string]*entry{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached reaction list for key, or nil and false when
// the key is absent or its entry has expired.
func (c *Cache) Get(key string) ([]Reaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.get(key)
}

func (c *Cache) get(key string) ([]Reaction, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) > e.ttl {
		c.remove(key)
		return nil, false
	}

	out := make([]Reaction, len(e.reactions))
	copy(out, e.reactions)
	return out, true
}

// Set stores reactions under key, refreshing the entry timestamp. When
// the cache is at capacity the insertion-order-oldest key is evicted.
func (c *Cache) Set(key string, reactions []Reaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, reactions)
}

func (c *Cache) set(key string, reactions []Reaction) {
	stored := make([]Reaction, len(reactions))
	copy(stored, reactions)

	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.capacity {
			c.remove(c.order[0])
		}
		c.order = append(c.order, key)
	}

	c.entries[key] = &entry{reactions: stored, storedAt: c.now(), ttl: c.ttl}
}

// OptimisticUpdate mutates the cached list for key before the server
// confirms: on add, a synthesized record for userID/emoji is appended
// unless that user already reacted with that emoji; on remove, the
// matching record is deleted. Returns the mutated list, or nil when key
// has no live entry; an optimistic update never fabricates a cache
// entry from nothing.
func (c *Cache) OptimisticUpdate(key, userID, emoji string, action UpdateAction, meta Meta) []Reaction {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.get(key)
	if !ok {
		return nil
	}

	switch action {
	case ActionAdd:
		for _, r := range current {
			if r.FromUserID == userID && r.Emoji == emoji {
				c.set(key, current)
				return current
			}
		}
		current = append(current, Reaction{
			Emoji:        emoji,
			FromUserID:   userID,
			FromUserName: meta.FromUserName,
			ToUserID:     meta.ToUserID,
			ContextType:  meta.ContextType,
			ContextID:    meta.ContextID,
			CreatedAt:    c.now().UnixMilli(),
		})
	case ActionRemove:
		filtered := current[:0]
		for _, r := range current {
			if r.FromUserID == userID && r.Emoji == emoji {
				continue
			}
			filtered = append(filtered, r)
		}
		current = filtered
	}

	c.set(key, current)
	return current
}

// Invalidate removes key unconditionally, forcing the next read to
// refetch. Used after a failed optimistic send.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key)
}

func (c *Cache) remove(key string) {
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len reports the number of live keys, counting expired entries that
// have not yet been touched.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
