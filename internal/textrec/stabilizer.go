package textrec

import "math"

// Stabilizer smooths numeric zone readings across cycles, one
// exponential moving average per zone. It belongs to the producer
// goroutine exclusively and carries no locking.
type Stabilizer struct {
	alpha   float64
	maxJump float64
	values  map[string]float64
}

// NewStabilizer builds a stabilizer with the given EMA weight and
// relative-change ceiling.
func NewStabilizer(alpha, maxJump float64) *Stabilizer {
	return &Stabilizer{
		alpha:   alpha,
		maxJump: maxJump,
		values:  make(map[string]float64),
	}
}

// Apply folds a new reading into the zone's moving average and returns
// the smoothed value. A change beyond the relative ceiling against a
// non-zero average is a single-frame OCR glitch: the previous stable
// value comes back and the average is left untouched, so genuine slow
// drift still tracks while spikes do not.
func (s *Stabilizer) Apply(zone string, v float64) float64 {
	prev, ok := s.values[zone]
	if !ok {
		s.values[zone] = v
		return v
	}
	if prev > 0 && math.Abs(v-prev)/prev > s.maxJump {
		return prev
	}
	ema := s.alpha*v + (1-s.alpha)*prev
	s.values[zone] = ema
	return ema
}

// Peek returns the zone's current smoothed value, if any.
func (s *Stabilizer) Peek(zone string) (float64, bool) {
	v, ok := s.values[zone]
	return v, ok
}

// Reset drops all accumulated zone state. Called when the room or
// layout changes and old values would poison the new table.
func (s *Stabilizer) Reset() {
	s.values = make(map[string]float64)
}
