package store

import "time"

// entry is one stored value with its lifetime metadata. It is created on
// Set, replaced in place on overwrite, and destroyed by expiry-on-read,
// explicit deletion, capacity eviction or Clear.
type entry[V any] struct {
	value    V
	storedAt time.Time
	ttl      time.Duration // 0 = never expires
}

// expired reports whether the entry's lifetime has elapsed.
// An entry is live iff ttl == 0 or now-storedAt < ttl.
func (e *entry[V]) expired(now time.Time) bool {
	if e.ttl <= 0 {
		return false
	}
	return now.Sub(e.storedAt) >= e.ttl
}
