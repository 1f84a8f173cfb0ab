package bus

import "github.com/vexordb/go-tier-cache/model"

// ring is the bounded envelope history. It overwrites the oldest slot when
// full. Not threadsafe on its own; the bus mutex guards it.
type ring struct {
	buf  []model.Envelope
	head int // next write position
	size int
}

func newRing(capacity int) *ring {
	if capacity < 1 {
		capacity = DefaultHistorySize
	}
	return &ring{buf: make([]model.Envelope, capacity)}
}

func (r *ring) push(e model.Envelope) {
	r.buf[r.head] = e
	r.head = (r.head + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

// last returns the newest n envelopes, oldest first. n <= 0 or n > size
// means everything retained.
func (r *ring) last(n int) []model.Envelope {
	if n <= 0 || n > r.size {
		n = r.size
	}
	out := make([]model.Envelope, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.buf[(r.head-n+i+len(r.buf))%len(r.buf)])
	}
	return out
}
