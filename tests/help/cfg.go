package help

import (
	"time"

	"github.com/vexordb/go-tier-cache/config"
	"github.com/vexordb/go-tier-cache/model"
)

func Cfg() *config.Cache {
	c := config.Default()
	c.AdjustConfig()
	return c
}

// TinyCfg shrinks the tiers so eviction is easy to reason about in tests.
func TinyCfg() *config.Cache {
	c := &config.Cache{
		Tiers: map[string]*config.TierCfg{
			model.TierSchema:  {MaxSize: 3, DefaultTTL: time.Hour},
			model.TierQuery:   {MaxSize: 3, DefaultTTL: 5 * time.Minute},
			model.TierExplain: {MaxSize: 3, DefaultTTL: 10 * time.Minute},
			model.TierDocs:    {MaxSize: 3, DefaultTTL: 0},
		},
		Bus: config.BusCfg{HistorySize: 8},
	}
	c.AdjustConfig()
	return c
}
