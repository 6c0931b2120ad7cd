package axis

import "math"

// Limits is the mechanical range of one axis in degrees.
type Limits struct {
	Min float64
	Max float64
}

// Clamp returns v constrained to the limits.
func (l Limits) Clamp(v float64) float64 {
	if v < l.Min {
		return l.Min
	}
	if v > l.Max {
		return l.Max
	}
	return v
}

// Contains reports whether v lies within the limits.
func (l Limits) Contains(v float64) bool {
	return v >= l.Min && v <= l.Max
}

// Advance moves current one smoothing step toward target and returns the new
// position. The step is a fraction of the remaining distance, floored by
// minStep so convergence completes in finitely many ticks, and capped at the
// remaining distance so the position never overshoots. When the remaining
// distance is at or below minStep the position snaps exactly to target.
func Advance(current, target, factor, minStep float64) float64 {
	delta := target - current
	dist := math.Abs(delta)

	if dist <= minStep {
		return target
	}

	step := dist * factor
	if step < minStep {
		step = minStep
	}
	if step >= dist {
		return target
	}

	if delta > 0 {
		return current + step
	}
	return current - step
}
