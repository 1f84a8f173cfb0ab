// Package manager routes composite "tier:rest" keys to their tier store,
// aggregates hit/miss statistics and performs pattern-based and semantic
// invalidation, including write-query auto-invalidation driven by the bus.
package manager

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/vexordb/go-tier-cache/config"
	"github.com/vexordb/go-tier-cache/internal/bus"
	"github.com/vexordb/go-tier-cache/internal/store"
	"github.com/vexordb/go-tier-cache/model"
)

type Cacher interface {
	Get(key string) (value any, found bool, err error)
	Set(key string, value any, ttl ...time.Duration) error
	Has(key string) (bool, error)
	Invalidate(key string) (bool, error)
	InvalidatePattern(pattern string) (removed int, err error)
	OnSchemaChanged(connectionID, schema string) (removed int)
	OnConnectionRemoved(connectionID string) (removed int)
	Clear()
	ClearTier(tier string)
	Stats() model.Stats
	DetailedStats() map[string]model.TierStats
	Version() int64
}

// Manager owns one tier store per configured tier name. Tier stores carry
// their own locks; the manager itself only keeps atomic counters, so any
// number of tiers may report concurrently.
type Manager struct {
	cfg      *config.Cache
	logger   *slog.Logger
	tiers    map[string]*store.Tier[any]
	counters *counters
	unsub    func()
}

// New builds the tier stores and, when a bus is given, subscribes for
// query.executed events to auto-invalidate on writes.
func New(cfg *config.Cache, logger *slog.Logger, b bus.Bus, clk clock.Clock) *Manager {
	m := &Manager{
		cfg:      cfg,
		logger:   logger,
		tiers:    make(map[string]*store.Tier[any], len(cfg.Tiers)),
		counters: newCounters(),
	}
	for name, tierCfg := range cfg.Tiers {
		m.tiers[name] = store.New[any](tierCfg, clk)
	}
	if b != nil {
		m.unsub = b.On(model.TopicQueryExecuted, m.onQueryExecuted)
	}
	return m
}

// Close unsubscribes the manager from the bus.
func (m *Manager) Close() error {
	if m.unsub != nil {
		m.unsub()
	}
	return nil
}

// Get resolves key to its tier and reads through. An unknown tier degrades
// to a logged miss; a key without a separator is a hard error.
func (m *Manager) Get(key string) (any, bool, error) {
	t, local, err := m.resolve(key, "get")
	if err != nil {
		return nil, false, err
	}
	if t == nil {
		m.counters.misses.Add(1)
		return nil, false, nil
	}

	value, found := t.Get(local)
	if found {
		m.counters.hits.Add(1)
	} else {
		m.counters.misses.Add(1)
	}
	return value, found, nil
}

// Set stores value under key. Omitting ttl applies the tier's default;
// a zero ttl means the entry never expires. An unknown tier is a logged
// no-op: failing to cache must never abort the caller's primary operation.
func (m *Manager) Set(key string, value any, ttl ...time.Duration) error {
	t, local, err := m.resolve(key, "set")
	if err != nil {
		return err
	}
	if t == nil {
		return nil
	}

	d := store.DefaultTTL
	if len(ttl) > 0 {
		d = ttl[0]
	}
	t.Set(local, value, d)
	return nil
}

// Has reports liveness with Get's exact semantics, stats included.
func (m *Manager) Has(key string) (bool, error) {
	t, local, err := m.resolve(key, "has")
	if err != nil {
		return false, err
	}
	if t == nil {
		m.counters.misses.Add(1)
		return false, nil
	}

	found := t.Has(local)
	if found {
		m.counters.hits.Add(1)
	} else {
		m.counters.misses.Add(1)
	}
	return found, nil
}

// Invalidate removes one entry and reports whether it existed.
func (m *Manager) Invalidate(key string) (bool, error) {
	t, local, err := m.resolve(key, "invalidate")
	if err != nil {
		return false, err
	}
	if t == nil {
		m.counters.misses.Add(1)
		return false, nil
	}
	return t.Delete(local), nil
}

// InvalidatePattern deletes every entry whose fully-qualified
// "tier:localKey" form matches pattern, across all tiers, and returns the
// exact count removed.
func (m *Manager) InvalidatePattern(pattern string) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, fmt.Errorf("compile invalidation pattern %q: %w", pattern, err)
	}

	removed := 0
	for name, t := range m.tiers {
		for _, local := range t.Keys() {
			if re.MatchString(model.JoinKey(name, local)) && t.Delete(local) {
				removed++
			}
		}
	}
	if removed > 0 {
		m.logger.Debug("cache entries invalidated", "pattern", pattern, "removed", removed)
	}
	return removed, nil
}

// OnSchemaChanged drops cached schema metadata for the connection (one
// schema when given, all otherwise) and always drops the connection's query
// and explain results: plans may reference any schema.
func (m *Manager) OnSchemaChanged(connectionID, schema string) int {
	conn := regexp.QuoteMeta(connectionID)

	var removed int
	if schema != "" {
		removed += m.invalidateBuilt("^" + model.TierSchema + ":" + conn + ":" + regexp.QuoteMeta(schema))
	} else {
		removed += m.invalidateBuilt("^" + model.TierSchema + ":" + conn + "(:|$)")
	}
	// The id must end at a segment boundary so "c1" never matches "c10".
	removed += m.invalidateBuilt("^(" + model.TierQuery + "|" + model.TierExplain + "):" + conn + ":")

	m.logger.Info("schema changed, cache invalidated",
		"connection_id", connectionID, "schema", schema, "removed", removed)
	return removed
}

// OnConnectionRemoved drops every tier's entries for the connection. The id
// is escaped so ids containing pattern metacharacters match literally.
func (m *Manager) OnConnectionRemoved(connectionID string) int {
	removed := m.invalidateBuilt("^[^:]+:" + regexp.QuoteMeta(connectionID) + "(:|$)")

	m.logger.Info("connection removed, cache invalidated",
		"connection_id", connectionID, "removed", removed)
	return removed
}

// Clear empties every tier, zeroes the access counters and bumps the
// version so collaborators can detect a wipe without polling contents.
func (m *Manager) Clear() {
	for _, t := range m.tiers {
		t.Clear()
	}
	m.counters.reset()
	version := m.counters.version.Add(1)
	m.logger.Info("cache cleared", "version", version)
}

// ClearTier empties exactly one tier. An unknown name is a silent no-op.
func (m *Manager) ClearTier(tier string) {
	if t, ok := m.tiers[tier]; ok {
		t.Clear()
	}
}

func (m *Manager) Stats() model.Stats {
	hits, misses := m.counters.snapshot()
	return model.Stats{Hits: hits, Misses: misses, HitRate: hitRate(hits, misses)}
}

// DetailedStats reports per-tier occupancy. The hit rate attached to each
// tier is the global one; see model.TierStats.
func (m *Manager) DetailedStats() map[string]model.TierStats {
	hits, misses := m.counters.snapshot()
	global := hitRate(hits, misses)

	out := make(map[string]model.TierStats, len(m.tiers))
	for name, t := range m.tiers {
		out[name] = model.TierStats{Size: t.Size(), MaxSize: t.MaxSize(), HitRate: global}
	}
	return out
}

// Version returns the monotonically increasing clear counter.
func (m *Manager) Version() int64 {
	return m.counters.version.Load()
}

/**
 * Private API.
 */

// resolve splits key and looks up its tier store. A missing separator is
// returned as an error; an unknown tier is logged and returned as nil.
func (m *Manager) resolve(key, op string) (*store.Tier[any], string, error) {
	tier, local, err := model.SplitKey(key)
	if err != nil {
		return nil, "", err
	}
	t, ok := m.tiers[tier]
	if !ok {
		m.logger.Warn("unknown cache tier", "tier", tier, "key", key, "op", op)
		return nil, "", nil
	}
	return t, local, nil
}

// invalidateBuilt runs a pattern assembled from escaped identifiers; such
// patterns always compile.
func (m *Manager) invalidateBuilt(pattern string) int {
	removed, err := m.InvalidatePattern(pattern)
	if err != nil {
		m.logger.Error("built-in invalidation pattern failed to compile", "pattern", pattern, "error", err)
		return 0
	}
	return removed
}

// onQueryExecuted is the bus handler behind write-query auto-invalidation.
// Only the connection's query tier is touched; explain entries are dropped
// solely on schema changes.
func (m *Manager) onQueryExecuted(env model.Envelope) {
	var evt model.QueryExecuted
	switch data := env.Data.(type) {
	case model.QueryExecuted:
		evt = data
	case *model.QueryExecuted:
		evt = *data
	default:
		m.logger.Warn("unexpected query.executed payload", "event_id", env.ID, "payload_type", fmt.Sprintf("%T", env.Data))
		return
	}

	if !IsWriteStatement(evt.Query) {
		return
	}

	removed := m.invalidateBuilt("^" + model.TierQuery + ":" + regexp.QuoteMeta(evt.ConnectionID) + ":")
	if removed > 0 {
		m.logger.Debug("write query invalidated cached results",
			"connection_id", evt.ConnectionID, "removed", removed)
	}
}
