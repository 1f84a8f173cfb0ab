package manager

import "sync/atomic"

type counters struct {
	hits    atomic.Int64
	misses  atomic.Int64
	version atomic.Int64
}

func newCounters() *counters {
	return &counters{}
}

func (c *counters) snapshot() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// reset zeroes the access counters. The version counter survives resets by
// design: it only ever grows.
func (c *counters) reset() {
	c.hits.Store(0)
	c.misses.Store(0)
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
