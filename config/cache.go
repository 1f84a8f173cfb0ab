package config

// Cache groups configuration of all cache subsystems.
type Cache struct {
	// Tiers is the static tier table. It is fixed at construction time;
	// a key addressing a tier outside this table is a degraded no-op/miss,
	// never an implicit tier creation.
	Tiers map[string]*TierCfg `yaml:"tiers"`

	// Bus configures the invalidation event bus.
	Bus BusCfg `yaml:"bus"`

	// Telemetry configures periodic stats logging.
	// If nil, no telemetry goroutine is started.
	Telemetry *TelemetryCfg `yaml:"telemetry"`
}
