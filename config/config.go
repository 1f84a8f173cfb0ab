package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vexordb/go-tier-cache/model"
)

const DefaultHistorySize = 100

// Default returns the stock tier table: schema (100 entries, 1h),
// query (50, 5m), explain (50, 10m), docs (200, no expiry).
func Default() *Cache {
	return &Cache{
		Tiers: map[string]*TierCfg{
			model.TierSchema:  {MaxSize: 100, DefaultTTL: time.Hour},
			model.TierQuery:   {MaxSize: 50, DefaultTTL: 5 * time.Minute},
			model.TierExplain: {MaxSize: 50, DefaultTTL: 10 * time.Minute},
			model.TierDocs:    {MaxSize: 200, DefaultTTL: 0},
		},
		Bus: BusCfg{HistorySize: DefaultHistorySize},
	}
}

// Validate rejects configurations the cache cannot run with.
func (cfg *Cache) Validate() error {
	if len(cfg.Tiers) == 0 {
		return fmt.Errorf("validate config: no tiers configured")
	}
	for name, tier := range cfg.Tiers {
		if !tier.Enabled() {
			return fmt.Errorf("validate config: tier %q is nil", name)
		}
		if tier.MaxSize <= 0 {
			return fmt.Errorf("validate config: tier %q max_size must be positive, got %d", name, tier.MaxSize)
		}
		if tier.DefaultTTL < 0 {
			return fmt.Errorf("validate config: tier %q default_ttl must not be negative, got %s", name, tier.DefaultTTL)
		}
	}
	return nil
}

// AdjustConfig fills in derived defaults after unmarshalling.
func (cfg *Cache) AdjustConfig() {
	if cfg.Bus.HistorySize <= 0 {
		cfg.Bus.HistorySize = DefaultHistorySize
	}
}

func LoadConfig(path string) (*Cache, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	var cfg *Cache
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.AdjustConfig()

	return cfg, nil
}
