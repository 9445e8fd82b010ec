// Package course models the leg boundaries shared by every team.
package course

import (
	"fmt"
	"math"
)

// Boundaries are cumulative distances at which each leg ends. Leg i (1-based)
// ends at Boundaries[i-1]; a leg index of Legs()+1 means finished.
type Boundaries []float64

// New validates values and returns them as Boundaries.
func New(values []float64) (Boundaries, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no legs", ErrInvalidBoundaries)
	}
	prev := 0.0
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= prev {
			return nil, fmt.Errorf("%w: boundary %d (%v) must be greater than %v", ErrInvalidBoundaries, i+1, v, prev)
		}
		prev = v
	}
	return append(Boundaries(nil), values...), nil
}

// Legs returns the number of legs.
func (b Boundaries) Legs() int { return len(b) }

// End returns the cumulative distance at which leg ends.
func (b Boundaries) End(leg int) (float64, bool) {
	if leg < 1 || leg > len(b) {
		return 0, false
	}
	return b[leg-1], true
}

// Finished reports whether leg is past the final boundary.
func (b Boundaries) Finished(leg int) bool { return leg > len(b) }

// Advance moves from leg given the new cumulative total. Boundaries are checked
// one at a time so every leg crossed is reported, in order.
func (b Boundaries) Advance(leg int, total float64) (int, []int) {
	var completed []int
	for leg <= len(b) && b[leg-1] <= total {
		completed = append(completed, leg)
		leg++
	}
	return leg, completed
}

// Crossed returns the legs whose boundary lies in (from, to].
func (b Boundaries) Crossed(from, to float64) []int {
	var legs []int
	for i, v := range b {
		if from < v && v <= to {
			legs = append(legs, i+1)
		}
	}
	return legs
}

// LegAt returns the leg a team at total is running.
func (b Boundaries) LegAt(total float64) int {
	leg := 1
	for leg <= len(b) && b[leg-1] <= total {
		leg++
	}
	return leg
}
