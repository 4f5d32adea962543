package recognition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreetTrackerTransitions(t *testing.T) {
	tr := NewStreetTracker()
	assert.Equal(t, StreetPreflop, tr.Current())

	steps := []struct {
		count int
		want  Street
	}{
		{0, StreetPreflop},
		{1, StreetPreflop}, // flop being dealt
		{2, StreetPreflop},
		{3, StreetFlop},
		{2, StreetFlop}, // transient occlusion holds the street
		{4, StreetTurn},
		{5, StreetRiver},
		{6, StreetRiver}, // impossible counts hold too
		{-1, StreetRiver},
		{0, StreetPreflop}, // new hand
		{3, StreetFlop},
	}
	for _, s := range steps {
		assert.Equal(t, s.want, tr.Observe(s.count), "after observing %d", s.count)
	}
	assert.Equal(t, StreetFlop, tr.Current())
}

func TestStreetTrackerSkipsStraightToTurn(t *testing.T) {
	// Joining a table mid-hand: the first frame may already show four cards.
	tr := NewStreetTracker()
	assert.Equal(t, StreetTurn, tr.Observe(4))
}
