// Package bus implements the in-process priority event router driving cache
// invalidation. Dispatch is best-effort: a failing handler is logged and
// never affects sibling handlers or the emitter.
package bus

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vexordb/go-tier-cache/config"
	"github.com/vexordb/go-tier-cache/model"
)

const DefaultHistorySize = 100

type Bus interface {
	On(topic string, fn model.Handler) (unsubscribe func())
	Once(topic string, fn model.Handler) (unsubscribe func())
	Emit(topic string, data any, priority ...model.Priority)
	History(n int) []model.Envelope
}

type subscriber struct {
	id   uuid.UUID
	fn   model.Handler
	once bool
}

// EventBus routes envelopes to topic subscribers, draining higher-priority
// events first. Its mutex is never held while a handler runs, so handlers
// may freely touch the cache or re-enter Emit.
type EventBus struct {
	mu       sync.Mutex
	handlers map[string][]*subscriber
	pending  []model.Envelope
	history  *ring
	draining bool
	nextID   uint64
}

func New(cfg config.BusCfg) *EventBus {
	return &EventBus{
		handlers: make(map[string][]*subscriber),
		history:  newRing(cfg.HistorySize),
	}
}

// On registers fn for topic and returns its unsubscribe func. Registration
// order does not govern dispatch order; event priority does.
func (b *EventBus) On(topic string, fn model.Handler) func() {
	return b.subscribe(topic, fn, false)
}

// Once behaves as On but unregisters the handler after its first invocation
// that returns without panicking; a failing invocation leaves it armed.
func (b *EventBus) Once(topic string, fn model.Handler) func() {
	return b.subscribe(topic, fn, true)
}

// Emit publishes data under topic and drains the pending queue before
// returning, so all currently-due dispatch has completed. A handler calling
// Emit enqueues and returns immediately; the outer drain picks the event up.
// Priority defaults to normal when omitted.
func (b *EventBus) Emit(topic string, data any, priority ...model.Priority) {
	prio := model.PriorityNormal
	if len(priority) > 0 {
		prio = priority[0]
	}

	b.mu.Lock()
	b.nextID++
	env := model.Envelope{
		ID:        b.nextID,
		Topic:     topic,
		Data:      data,
		Priority:  prio,
		Timestamp: time.Now(),
	}
	b.pending = append(b.pending, env)
	// Stable keeps enqueue order among equal priorities.
	sort.SliceStable(b.pending, func(i, j int) bool {
		return b.pending[i].Priority > b.pending[j].Priority
	})
	b.history.push(env)

	if b.draining {
		b.mu.Unlock()
		return
	}
	b.draining = true
	b.mu.Unlock()

	b.drain()
}

// History returns the newest n retained envelopes, oldest first.
// n <= 0 means all retained envelopes.
func (b *EventBus) History(n int) []model.Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.last(n)
}

/**
 * Private API.
 */

func (b *EventBus) subscribe(topic string, fn model.Handler, once bool) func() {
	s := &subscriber{id: uuid.New(), fn: fn, once: once}
	b.mu.Lock()
	b.handlers[topic] = append(b.handlers[topic], s)
	b.mu.Unlock()
	return func() { b.unsubscribe(topic, s.id) }
}

func (b *EventBus) unsubscribe(topic string, id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[topic]
	for i, s := range subs {
		if s.id == id {
			b.handlers[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.handlers[topic]) == 0 {
		delete(b.handlers, topic)
	}
}

// drain pops the front of the re-sorted queue until it is empty, re-checking
// after every dispatch because handlers may have enqueued more events.
// Exactly one goroutine drains at a time.
func (b *EventBus) drain() {
	for {
		b.mu.Lock()
		if len(b.pending) == 0 {
			b.draining = false
			b.mu.Unlock()
			return
		}
		env := b.pending[0]
		b.pending = b.pending[1:]

		subs := b.handlers[env.Topic]
		fire := make([]*subscriber, len(subs))
		copy(fire, subs)
		b.mu.Unlock()

		b.dispatch(env, fire)
	}
}

// dispatch runs every handler for one envelope concurrently and awaits them
// all. Panics are recovered per handler. A once subscriber is consumed only
// when its handler returns cleanly; a panicking one stays armed for the next
// event. Consumption happens before Wait returns, ahead of the next pop.
func (b *EventBus) dispatch(env model.Envelope, subs []*subscriber) {
	if len(subs) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, s := range subs {
		wg.Add(1)
		go func(s *subscriber) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Str("topic", env.Topic).
						Uint64("event_id", env.ID).
						Interface("panic", r).
						Msg("[bus] handler failed")
					return
				}
				if s.once {
					b.unsubscribe(env.Topic, s.id)
				}
			}()
			s.fn(env)
		}(s)
	}
	wg.Wait()
}
