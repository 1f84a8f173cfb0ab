package bus

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vexordb/go-tier-cache/model"
)

func fill(r *ring, n int) {
	for i := 1; i <= n; i++ {
		r.push(model.Envelope{ID: uint64(i)})
	}
}

// TestRing_Last_PartialFill returns only what was pushed.
func TestRing_Last_PartialFill(t *testing.T) {
	r := newRing(5)
	fill(r, 3)

	out := r.last(0)
	require.Len(t, out, 3)
	require.Equal(t, uint64(1), out[0].ID)
	require.Equal(t, uint64(3), out[2].ID)
}

// TestRing_Last_WrapsAroundDroppingOldest overwrites the oldest slots.
func TestRing_Last_WrapsAroundDroppingOldest(t *testing.T) {
	r := newRing(3)
	fill(r, 7)

	out := r.last(0)
	require.Len(t, out, 3)
	require.Equal(t, uint64(5), out[0].ID)
	require.Equal(t, uint64(6), out[1].ID)
	require.Equal(t, uint64(7), out[2].ID)
}

// TestRing_Last_CountClampsToSize never returns more than retained.
func TestRing_Last_CountClampsToSize(t *testing.T) {
	r := newRing(4)
	fill(r, 2)

	require.Len(t, r.last(10), 2)
	require.Len(t, r.last(1), 1)
	require.Equal(t, uint64(2), r.last(1)[0].ID)
}

// TestRing_NonPositiveCapacityFallsBack uses the default size.
func TestRing_NonPositiveCapacityFallsBack(t *testing.T) {
	r := newRing(0)
	require.Len(t, r.buf, DefaultHistorySize)
}
