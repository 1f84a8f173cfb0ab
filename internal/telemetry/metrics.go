package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vexordb/go-tier-cache/internal/manager"
)

// MetricsConfig holds prometheus naming for the cache collector.
type MetricsConfig struct {
	Namespace string
	Subsystem string
}

// Collector exposes the manager's counters and tier occupancy as prometheus
// metrics. It samples on scrape; nothing is pushed.
type Collector struct {
	cache manager.Cacher

	hits     *prometheus.Desc
	misses   *prometheus.Desc
	hitRate  *prometheus.Desc
	version  *prometheus.Desc
	tierSize *prometheus.Desc
	tierCap  *prometheus.Desc
}

func NewCollector(cfg *MetricsConfig, cache manager.Cacher) *Collector {
	if cfg == nil {
		cfg = &MetricsConfig{Namespace: "tiercache"}
	}
	fqName := func(name string) string {
		return prometheus.BuildFQName(cfg.Namespace, cfg.Subsystem, name)
	}
	return &Collector{
		cache: cache,
		hits: prometheus.NewDesc(fqName("hits_total"),
			"Cache hits since start or last clear.", nil, nil),
		misses: prometheus.NewDesc(fqName("misses_total"),
			"Cache misses since start or last clear.", nil, nil),
		hitRate: prometheus.NewDesc(fqName("hit_rate"),
			"Global hit rate, 0 when no accesses were recorded.", nil, nil),
		version: prometheus.NewDesc(fqName("clear_version"),
			"Monotonic counter incremented by every full cache clear.", nil, nil),
		tierSize: prometheus.NewDesc(fqName("tier_entries"),
			"Entries currently held per tier.", []string{"tier"}, nil),
		tierCap: prometheus.NewDesc(fqName("tier_capacity"),
			"Configured entry capacity per tier.", []string{"tier"}, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.hitRate
	ch <- c.version
	ch <- c.tierSize
	ch <- c.tierCap
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.cache.Stats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.Misses))
	ch <- prometheus.MustNewConstMetric(c.hitRate, prometheus.GaugeValue, stats.HitRate)
	ch <- prometheus.MustNewConstMetric(c.version, prometheus.CounterValue, float64(c.cache.Version()))

	for name, ts := range c.cache.DetailedStats() {
		ch <- prometheus.MustNewConstMetric(c.tierSize, prometheus.GaugeValue, float64(ts.Size), name)
		ch <- prometheus.MustNewConstMetric(c.tierCap, prometheus.GaugeValue, float64(ts.MaxSize), name)
	}
}
