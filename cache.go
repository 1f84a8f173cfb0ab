// Package tiercache is a multi-tier in-memory cache with per-tier LRU+TTL
// eviction and event-driven invalidation, wired to a priority event bus.
package tiercache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vexordb/go-tier-cache/config"
	"github.com/vexordb/go-tier-cache/internal/bus"
	"github.com/vexordb/go-tier-cache/internal/manager"
	"github.com/vexordb/go-tier-cache/internal/telemetry"
	"github.com/vexordb/go-tier-cache/model"
)

// ErrInvalidKeyFormat mirrors model.ErrInvalidKeyFormat for callers that
// only import the root package.
var ErrInvalidKeyFormat = model.ErrInvalidKeyFormat

// NoExpiry is the Set TTL meaning the entry never expires.
const NoExpiry time.Duration = 0

type TierCache interface {
	manager.Cacher
	bus.Bus
	telemetry.Logger
	io.Closer
}

type Cache struct {
	manager.Cacher
	bus.Bus
	telemetry.Logger
	mgr *manager.Manager
	cls context.CancelFunc
}

// New wires the event bus, the tier stores, the manager and telemetry.
// The manager subscribes to query.executed on the returned bus, so a
// collaborator publishing there gets write invalidation for free.
func New(ctx context.Context, cfg *config.Cache, logger *slog.Logger) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.AdjustConfig()

	ctx, cancel := context.WithCancel(ctx)
	eventBus := bus.New(cfg.Bus)
	mgr := manager.New(cfg, logger, eventBus, clock.New())
	telemeter := telemetry.New(ctx, cfg.Telemetry, logger, mgr)
	return &Cache{Cacher: mgr, Bus: eventBus, Logger: telemeter, mgr: mgr, cls: cancel}, nil
}

func (c *Cache) Close() error {
	c.cls()
	return c.mgr.Close()
}

// MetricsCollector returns a prometheus collector over this cache's stats.
// The caller owns registration.
func (c *Cache) MetricsCollector(cfg *telemetry.MetricsConfig) prometheus.Collector {
	return telemetry.NewCollector(cfg, c.mgr)
}

// Get reads key and asserts the stored value to T. A value of another type
// is reported as ErrWrongValueType; the entry itself is left intact.
func Get[T any](c *Cache, key string) (T, bool, error) {
	var zero T
	value, found, err := c.Cacher.Get(key)
	if err != nil || !found {
		return zero, false, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false, fmt.Errorf("cache key %q holds %T: %w", key, value, ErrWrongValueType)
	}
	return typed, true, nil
}

// Set stores value under key. Omitting ttl applies the tier default.
func Set[T any](c *Cache, key string, value T, ttl ...time.Duration) error {
	return c.Cacher.Set(key, value, ttl...)
}

// GetOrCompute returns the cached value for key or computes, stores and
// returns a fresh one. A failure to cache the computed value is logged away
// inside Set and never surfaces: the computed result stays usable.
func GetOrCompute[T any](c *Cache, key string, compute func() (T, error), ttl ...time.Duration) (T, error) {
	var zero T
	cached, found, err := Get[T](c, key)
	if err != nil && !errors.Is(err, ErrWrongValueType) {
		return zero, err
	}
	if found {
		return cached, nil
	}

	value, err := compute()
	if err != nil {
		return zero, err
	}
	_ = Set(c, key, value, ttl...)
	return value, nil
}

// ErrWrongValueType reports a typed Get against a key holding another type.
var ErrWrongValueType = errors.New("cached value has a different type")
