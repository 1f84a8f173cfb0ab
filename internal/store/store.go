// Package store implements the per-tier LRU+TTL map. Each tier is an
// independent partition with its own capacity and default lifetime. Expiry
// is lazy: an entry is checked only when its key is accessed, there is no
// background sweep.
package store

import (
	"container/list"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/vexordb/go-tier-cache/config"
)

// DefaultTTL is the Set sentinel for "use the tier's configured default".
const DefaultTTL time.Duration = -1

// Tier is one named cache partition. A single mutex guards the map, the
// recency list and the element index so that Get's check-expiry, delete and
// promote steps are atomic with respect to concurrent writers.
type Tier[V any] struct {
	mu sync.Mutex

	maxSize    int
	defaultTTL time.Duration
	clock      clock.Clock

	items map[string]*entry[V]
	lru   *list.List // front = most recently used
	lidx  map[string]*list.Element
}

func New[V any](cfg *config.TierCfg, clk clock.Clock) *Tier[V] {
	if clk == nil {
		clk = clock.New()
	}
	return &Tier[V]{
		maxSize:    cfg.MaxSize,
		defaultTTL: cfg.DefaultTTL,
		clock:      clk,
		items:      make(map[string]*entry[V], cfg.MaxSize),
		lru:        list.New(),
		lidx:       make(map[string]*list.Element, cfg.MaxSize),
	}
}

// Get returns the live value for key, promoting it to most-recently-used.
// An expired entry is removed and reported as a miss.
func (t *Tier[V]) Get(key string) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.getUnlocked(key)
}

// Has shares Get's code path on purpose: it triggers the same expiry cleanup
// and recency promotion, so the two can never disagree about liveness.
func (t *Tier[V]) Has(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.getUnlocked(key)
	return ok
}

// Set inserts or overwrites key. Inserting a new key into a full tier evicts
// the single least-recently-used key first; an overwrite never evicts. The
// key ends up most-recently-used either way. Pass DefaultTTL to use the
// tier's configured default; a zero ttl means the entry never expires.
func (t *Tier[V]) Set(key string, value V, ttl time.Duration) {
	if ttl < 0 {
		ttl = t.defaultTTL
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	if e, ok := t.items[key]; ok {
		e.value = value
		e.storedAt = now
		e.ttl = ttl
		t.lru.MoveToFront(t.lidx[key])
		return
	}

	if len(t.items) >= t.maxSize {
		t.evictOldestUnlocked()
	}

	t.items[key] = &entry[V]{value: value, storedAt: now, ttl: ttl}
	t.lidx[key] = t.lru.PushFront(key)
}

// Delete removes key and reports whether it was present.
func (t *Tier[V]) Delete(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.items[key]; !ok {
		return false
	}
	t.removeUnlocked(key)
	return true
}

func (t *Tier[V]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.items = make(map[string]*entry[V], t.maxSize)
	t.lru.Init()
	t.lidx = make(map[string]*list.Element, t.maxSize)
}

func (t *Tier[V]) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

func (t *Tier[V]) MaxSize() int { return t.maxSize }

// Keys returns all keys currently held, most- to least-recently-used.
// Expired-but-unswept keys are included.
func (t *Tier[V]) Keys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	keys := make([]string, 0, t.lru.Len())
	for el := t.lru.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(string))
	}
	return keys
}

/**
 * Private API.
 */

func (t *Tier[V]) getUnlocked(key string) (V, bool) {
	var zero V
	e, ok := t.items[key]
	if !ok {
		return zero, false
	}
	if e.expired(t.clock.Now()) {
		t.removeUnlocked(key)
		return zero, false
	}
	t.lru.MoveToFront(t.lidx[key])
	return e.value, true
}

func (t *Tier[V]) removeUnlocked(key string) {
	delete(t.items, key)
	if el := t.lidx[key]; el != nil {
		t.lru.Remove(el)
		delete(t.lidx, key)
	}
}

// evictOldestUnlocked drops the back of the recency list. Keys inserted
// together and never touched since sit in insertion order, so ties evict
// FIFO structurally.
func (t *Tier[V]) evictOldestUnlocked() {
	el := t.lru.Back()
	if el == nil {
		return
	}
	t.removeUnlocked(el.Value.(string))
}
