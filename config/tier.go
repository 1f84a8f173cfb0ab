package config

import "time"

// TierCfg bounds one named tier. Created once at startup and never mutated.
type TierCfg struct {
	// MaxSize is the entry-count capacity. Inserting a new key into a full
	// tier evicts the least-recently-used key first. Must be positive.
	MaxSize int `yaml:"max_size"`

	// DefaultTTL applies when a Set omits an explicit TTL.
	// Zero means entries never expire.
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

func (cfg *TierCfg) Enabled() bool {
	return cfg != nil
}
