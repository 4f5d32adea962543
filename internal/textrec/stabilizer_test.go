package textrec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStabilizerFirstValuePassesThrough(t *testing.T) {
	s := NewStabilizer(0.15, 0.30)
	assert.InDelta(t, 42.0, s.Apply("pot", 42.0), 1e-12)

	v, ok := s.Peek("pot")
	require.True(t, ok)
	assert.InDelta(t, 42.0, v, 1e-12)
}

func TestStabilizerConvergesToConstant(t *testing.T) {
	s := NewStabilizer(0.15, 0.30)
	s.Apply("pot", 100)

	var got float64
	for range 200 {
		got = s.Apply("pot", 110)
	}
	assert.InDelta(t, 110, got, 1e-6)
}

func TestStabilizerSmoothsSmallChanges(t *testing.T) {
	s := NewStabilizer(0.15, 0.30)
	s.Apply("pot", 100)

	got := s.Apply("pot", 110)
	assert.InDelta(t, 0.15*110+0.85*100, got, 1e-12)
}

func TestStabilizerRejectsJumps(t *testing.T) {
	s := NewStabilizer(0.15, 0.30)
	s.Apply("pot", 100)

	// 100 -> 200 is a 100% change; the stable value survives and the
	// average does not move.
	assert.InDelta(t, 100, s.Apply("pot", 200), 1e-12)
	v, ok := s.Peek("pot")
	require.True(t, ok)
	assert.InDelta(t, 100, v, 1e-12)

	// Genuine slow drift still tracks afterwards.
	got := s.Apply("pot", 105)
	assert.Greater(t, got, 100.0)
	assert.Less(t, got, 105.0)
}

func TestStabilizerZeroPriorAcceptsAnything(t *testing.T) {
	s := NewStabilizer(0.15, 0.30)
	s.Apply("pot", 0)

	// A pot growing from zero has no meaningful relative change.
	got := s.Apply("pot", 50)
	assert.InDelta(t, 0.15*50, got, 1e-12)
}

func TestStabilizerZonesAreIndependent(t *testing.T) {
	s := NewStabilizer(0.15, 0.30)
	s.Apply("pot", 100)
	s.Apply("stack_1", 2000)

	assert.InDelta(t, 100, s.Apply("pot", 300), 1e-12)
	assert.False(t, math.Signbit(s.Apply("stack_1", 1900)))

	v, ok := s.Peek("stack_1")
	require.True(t, ok)
	assert.InDelta(t, 0.15*1900+0.85*2000, v, 1e-9)
}

func TestStabilizerReset(t *testing.T) {
	s := NewStabilizer(0.15, 0.30)
	s.Apply("pot", 100)
	s.Reset()

	_, ok := s.Peek("pot")
	assert.False(t, ok)

	// After the reset the next value seeds fresh, no jump rejection.
	assert.InDelta(t, 900, s.Apply("pot", 900), 1e-12)
}
