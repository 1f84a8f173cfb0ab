package bus

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vexordb/go-tier-cache/config"
	"github.com/vexordb/go-tier-cache/model"
)

func newBus() *EventBus {
	return New(config.BusCfg{HistorySize: DefaultHistorySize})
}

// recorder collects envelope ids/topics in dispatch order, safely across the
// bus's per-event handler goroutines.
type recorder struct {
	mu     sync.Mutex
	topics []string
	ids    []uint64
}

func (r *recorder) handler() model.Handler {
	return func(e model.Envelope) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.topics = append(r.topics, e.Topic)
		r.ids = append(r.ids, e.ID)
	}
}

// TestBus_Emit_DeliversToSubscriber delivers payload and metadata.
func TestBus_Emit_DeliversToSubscriber(t *testing.T) {
	b := newBus()

	var got model.Envelope
	b.On("topic.a", func(e model.Envelope) { got = e })

	b.Emit("topic.a", "payload", model.PriorityHigh)

	require.Equal(t, "topic.a", got.Topic)
	require.Equal(t, "payload", got.Data)
	require.Equal(t, model.PriorityHigh, got.Priority)
	require.NotZero(t, got.ID)
	require.False(t, got.Timestamp.IsZero())
}

// TestBus_Emit_DefaultPriorityIsNormal fills in normal when omitted.
func TestBus_Emit_DefaultPriorityIsNormal(t *testing.T) {
	b := newBus()

	var got model.Priority
	b.On("topic.a", func(e model.Envelope) { got = e.Priority })

	b.Emit("topic.a", nil)

	require.Equal(t, model.PriorityNormal, got)
}

// TestBus_Emit_PriorityOrdersPendingQueue drains queued events by priority.
func TestBus_Emit_PriorityOrdersPendingQueue(t *testing.T) {
	b := newBus()
	rec := &recorder{}
	b.On("low", rec.handler())
	b.On("critical", rec.handler())
	b.On("normal", rec.handler())

	// Enqueue all three during an active drain so they sort before dispatch.
	b.Once("kick", func(model.Envelope) {
		b.Emit("low", nil, model.PriorityLow)
		b.Emit("critical", nil, model.PriorityCritical)
		b.Emit("normal", nil, model.PriorityNormal)
	})
	b.Emit("kick", nil)

	require.Equal(t, []string{"critical", "normal", "low"}, rec.topics)
}

// TestBus_Emit_EqualPriorityKeepsEnqueueOrder is FIFO among equals.
func TestBus_Emit_EqualPriorityKeepsEnqueueOrder(t *testing.T) {
	b := newBus()
	rec := &recorder{}
	b.On("first", rec.handler())
	b.On("second", rec.handler())

	b.Once("kick", func(model.Envelope) {
		b.Emit("first", nil)
		b.Emit("second", nil)
	})
	b.Emit("kick", nil)

	require.Equal(t, []string{"first", "second"}, rec.topics)
}

// TestBus_Emit_ReentrantEmitIsDrainedBeforeReturn drains handler-emitted
// events before the outer Emit returns.
func TestBus_Emit_ReentrantEmitIsDrainedBeforeReturn(t *testing.T) {
	b := newBus()

	var depth3 atomic.Bool
	b.On("depth.1", func(model.Envelope) { b.Emit("depth.2", nil) })
	b.On("depth.2", func(model.Envelope) { b.Emit("depth.3", nil) })
	b.On("depth.3", func(model.Envelope) { depth3.Store(true) })

	b.Emit("depth.1", nil)

	require.True(t, depth3.Load(), "nested events must be drained before Emit returns")
}

// TestBus_Emit_HandlerPanicDoesNotStopSiblings isolates failures per handler.
func TestBus_Emit_HandlerPanicDoesNotStopSiblings(t *testing.T) {
	b := newBus()

	var calls atomic.Int64
	b.On("topic.a", func(model.Envelope) { panic("boom") })
	b.On("topic.a", func(model.Envelope) { calls.Add(1) })
	b.On("topic.a", func(model.Envelope) { calls.Add(1) })

	require.NotPanics(t, func() { b.Emit("topic.a", nil) })
	require.Equal(t, int64(2), calls.Load())
}

// TestBus_On_UnsubscribeStopsDelivery stops delivery after unsubscribe.
func TestBus_On_UnsubscribeStopsDelivery(t *testing.T) {
	b := newBus()

	var calls atomic.Int64
	unsubscribe := b.On("topic.a", func(model.Envelope) { calls.Add(1) })

	b.Emit("topic.a", nil)
	unsubscribe()
	b.Emit("topic.a", nil)

	require.Equal(t, int64(1), calls.Load())
}

// TestBus_Once_FiresExactlyOnce self-unregisters after the first event.
func TestBus_Once_FiresExactlyOnce(t *testing.T) {
	b := newBus()

	var calls atomic.Int64
	b.Once("topic.a", func(model.Envelope) { calls.Add(1) })

	b.Emit("topic.a", nil)
	b.Emit("topic.a", nil)

	require.Equal(t, int64(1), calls.Load())
}

// TestBus_Once_PanickingHandlerStaysArmed keeps a once registration alive
// until a delivery returns cleanly.
func TestBus_Once_PanickingHandlerStaysArmed(t *testing.T) {
	b := newBus()

	var calls atomic.Int64
	b.Once("topic.a", func(model.Envelope) {
		if calls.Add(1) == 1 {
			panic("boom")
		}
	})

	b.Emit("topic.a", nil) // fails, registration survives
	b.Emit("topic.a", nil) // succeeds, registration consumed
	b.Emit("topic.a", nil)

	require.Equal(t, int64(2), calls.Load())
}

// TestBus_On_PayloadOnlyAdapter subscribes a payload-shaped callback.
func TestBus_On_PayloadOnlyAdapter(t *testing.T) {
	b := newBus()

	var got any
	b.On("topic.a", model.PayloadOnly(func(data any) { got = data }))

	b.Emit("topic.a", 42)

	require.Equal(t, 42, got)
}

// TestBus_Emit_NoSubscribersIsFine is a silent no-op without handlers.
func TestBus_Emit_NoSubscribersIsFine(t *testing.T) {
	b := newBus()
	require.NotPanics(t, func() { b.Emit("nobody.home", 42) })
}

// TestBus_History_ReturnsNewestOldestFirst retains and orders envelopes.
func TestBus_History_ReturnsNewestOldestFirst(t *testing.T) {
	b := newBus()

	b.Emit("e.1", nil)
	b.Emit("e.2", nil)
	b.Emit("e.3", nil)

	all := b.History(0)
	require.Len(t, all, 3)
	require.Equal(t, "e.1", all[0].Topic)
	require.Equal(t, "e.3", all[2].Topic)

	last := b.History(2)
	require.Len(t, last, 2)
	require.Equal(t, "e.2", last[0].Topic)
	require.Equal(t, "e.3", last[1].Topic)
}

// TestBus_History_DropsOldestBeyondCapacity bounds the ring.
func TestBus_History_DropsOldestBeyondCapacity(t *testing.T) {
	b := New(config.BusCfg{HistorySize: 3})

	b.Emit("e.1", nil)
	b.Emit("e.2", nil)
	b.Emit("e.3", nil)
	b.Emit("e.4", nil)

	all := b.History(0)
	require.Len(t, all, 3)
	require.Equal(t, "e.2", all[0].Topic)
	require.Equal(t, "e.4", all[2].Topic)
}

// TestBus_Emit_IDsAreMonotonic increases envelope ids per emit.
func TestBus_Emit_IDsAreMonotonic(t *testing.T) {
	b := newBus()
	rec := &recorder{}
	b.On("topic.a", rec.handler())

	for i := 0; i < 5; i++ {
		b.Emit("topic.a", nil)
	}

	for i := 1; i < len(rec.ids); i++ {
		require.Greater(t, rec.ids[i], rec.ids[i-1])
	}
}

// TestBus_Emit_ConcurrentEmittersDeliverEverything is race-clean under load.
func TestBus_Emit_ConcurrentEmittersDeliverEverything(t *testing.T) {
	b := newBus()

	var calls atomic.Int64
	b.On("topic.a", func(model.Envelope) { calls.Add(1) })

	const emitters, perEmitter = 8, 50
	var wg sync.WaitGroup
	for i := 0; i < emitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perEmitter; j++ {
				b.Emit("topic.a", j)
			}
		}()
	}
	wg.Wait()

	// The drain-in-progress flag hands pending events to the active drainer,
	// whose own Emit does not return until the queue is empty, so once every
	// Emit returned everything has dispatched.
	require.Equal(t, int64(emitters*perEmitter), calls.Load())
}
