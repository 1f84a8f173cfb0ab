package config

import "time"

// TelemetryCfg configures the periodic stats logger.
type TelemetryCfg struct {
	// Interval between stats log lines. Example: "30s".
	Interval time.Duration `yaml:"interval"`
}

func (cfg *TelemetryCfg) Enabled() bool {
	return cfg != nil && cfg.Interval > 0
}
