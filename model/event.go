package model

import "time"

// Priority orders pending events at dispatch time. Higher priorities drain
// first; equal priorities keep their enqueue order.
type Priority int32

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Envelope is one published bus message. Envelopes are immutable once
// emitted; the bus retains them only in its bounded history ring.
type Envelope struct {
	// ID is unique and monotonically increasing per bus.
	ID        uint64
	Topic     string
	Data      any
	Priority  Priority
	Timestamp time.Time
}

// Handler consumes one envelope. A handler panic is caught and logged by the
// bus and never reaches sibling handlers or the emitter.
type Handler func(Envelope)

// PayloadOnly adapts a payload-shaped callback to the Handler signature for
// subscribers that do not care about envelope metadata.
func PayloadOnly(fn func(data any)) Handler {
	return func(e Envelope) { fn(e.Data) }
}
