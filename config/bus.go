package config

// BusCfg configures the event bus.
type BusCfg struct {
	// HistorySize bounds the retained envelope ring; the oldest envelope is
	// dropped when the ring is full. Defaults to 100 when non-positive.
	HistorySize int `yaml:"history_size"`
}
