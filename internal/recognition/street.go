package recognition

// Street is the betting round inferred from visible board cards.
type Street string

const (
	StreetPreflop Street = "preflop"
	StreetFlop    Street = "flop"
	StreetTurn    Street = "turn"
	StreetRiver   Street = "river"
)

// streetForCount maps a board-card count to its street. Counts 1 and 2
// occur mid-deal and map to no street.
func streetForCount(n int) (Street, bool) {
	switch n {
	case 0:
		return StreetPreflop, true
	case 3:
		return StreetFlop, true
	case 4:
		return StreetTurn, true
	case 5:
		return StreetRiver, true
	}
	return "", false
}

// StreetTracker holds the current street across frames, absorbing the
// transient board counts a dealing animation produces.
type StreetTracker struct {
	current Street
}

// NewStreetTracker starts at preflop.
func NewStreetTracker() *StreetTracker {
	return &StreetTracker{current: StreetPreflop}
}

// Observe feeds one frame's board count and returns the street in
// force. A drop back to zero cards is a new hand, not an error.
func (t *StreetTracker) Observe(boardCount int) Street {
	if s, ok := streetForCount(boardCount); ok {
		t.current = s
	}
	return t.current
}

// Current returns the street in force.
func (t *StreetTracker) Current() Street { return t.current }
