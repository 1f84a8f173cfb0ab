package model

// Stats is the aggregate hit/miss snapshot across all tiers.
type Stats struct {
	Hits   int64
	Misses int64
	// HitRate is Hits/(Hits+Misses), 0 when no accesses were recorded yet.
	HitRate float64
}

// TierStats describes one tier's occupancy.
//
// HitRate carries the global hit rate, not a per-tier one. Collaborators
// depend on this shape, so it is kept as is.
type TierStats struct {
	Size    int
	MaxSize int
	HitRate float64
}
