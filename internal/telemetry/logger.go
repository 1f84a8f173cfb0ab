package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/vexordb/go-tier-cache/config"
	"github.com/vexordb/go-tier-cache/internal/manager"
)

type Logger interface {
	Interval() time.Duration
	Close() error
}

// Logs periodically writes cache stats. Counters are cumulative, so each
// tick logs the delta since the previous one.
type Logs struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.TelemetryCfg
	logger   *slog.Logger
	cache    manager.Cacher
	interval time.Duration
}

func New(ctx context.Context, cfg *config.TelemetryCfg, logger *slog.Logger, cache manager.Cacher) *Logs {
	ctx, cancel := context.WithCancel(ctx)
	l := &Logs{
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		logger: logger,
		cache:  cache,
	}
	if cfg.Enabled() {
		l.interval = cfg.Interval
	}
	return l.run()
}

func (l *Logs) Interval() time.Duration {
	return l.interval
}

func (l *Logs) Close() error {
	l.cancel()
	return nil
}

func (l *Logs) run() *Logs {
	if l.cfg.Enabled() {
		go l.loop()
	}
	return l
}

func (l *Logs) loop() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	prev := l.cache.Stats()

	for {
		select {
		case <-l.ctx.Done():
			return

		case <-ticker.C:
			cur := l.cache.Stats()
			dHits := delta(prev.Hits, cur.Hits)
			dMisses := delta(prev.Misses, cur.Misses)
			prev = cur

			common := []any{"interval", l.interval.String()}

			l.logger.Info("cache_stats",
				append(common,
					"hits", dHits,
					"misses", dMisses,
					"hit_rate", cur.HitRate,
					"version", l.cache.Version(),
				)...,
			)

			for name, ts := range l.cache.DetailedStats() {
				l.logger.Info("cache_tier",
					append(common,
						"tier", name,
						"entries", ts.Size,
						"capacity", ts.MaxSize,
					)...,
				)
			}
		}
	}
}

// delta converts cumulative counters to a per-interval delta. A Clear
// resets the counters (cur < prev); cur then is the delta.
func delta(prev, cur int64) int64 {
	if cur >= prev {
		return cur - prev
	}
	return cur
}
