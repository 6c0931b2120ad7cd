package axis

import (
	"math"
	"testing"
)

// ---------- Limits.Clamp ----------

func TestLimits_Clamp(t *testing.T) {
	l := Limits{Min: 0, Max: 180}
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"inside", 90, 90},
		{"at_min", 0, 0},
		{"at_max", 180, 180},
		{"below_min", -10, 0},
		{"above_max", 200, 180},
		{"far_below", -1e9, 0},
		{"far_above", 1e9, 180},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := l.Clamp(tc.in); got != tc.want {
				t.Errorf("Clamp(%g) = %g, want %g", tc.in, got, tc.want)
			}
		})
	}
}

func TestLimits_Contains(t *testing.T) {
	l := Limits{Min: 10, Max: 20}
	if !l.Contains(10) || !l.Contains(20) || !l.Contains(15) {
		t.Error("boundary and interior values should be contained")
	}
	if l.Contains(9.99) || l.Contains(20.01) {
		t.Error("values outside the range should not be contained")
	}
}

// ---------- Advance ----------

func TestAdvance_ProportionalStep(t *testing.T) {
	// 90 -> 0 with factor 0.3: first step covers 27 degrees.
	got := Advance(90, 0, 0.3, 0.1)
	if math.Abs(got-63) > 1e-9 {
		t.Errorf("Advance(90, 0) = %g, want 63", got)
	}

	// Second step covers 18.9 degrees.
	got = Advance(got, 0, 0.3, 0.1)
	if math.Abs(got-44.1) > 1e-9 {
		t.Errorf("second Advance = %g, want 44.1", got)
	}
}

func TestAdvance_NegativeDirection(t *testing.T) {
	got := Advance(0, 90, 0.3, 0.1)
	if math.Abs(got-27) > 1e-9 {
		t.Errorf("Advance(0, 90) = %g, want 27", got)
	}
}

func TestAdvance_SnapWithinMinStep(t *testing.T) {
	cases := []struct {
		name    string
		current float64
		target  float64
	}{
		{"just_below", 90.05, 90},
		{"exactly_min_step", 90.1, 90},
		{"negative_delta", 89.95, 90},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Advance(tc.current, tc.target, 0.3, 0.1); got != tc.target {
				t.Errorf("Advance(%g, %g) = %g, want exact snap to %g", tc.current, tc.target, got, tc.target)
			}
		})
	}
}

func TestAdvance_MinStepFloor(t *testing.T) {
	// Remaining distance 0.2, proportional step would be 0.06; the floor
	// takes over without overshooting.
	got := Advance(90.2, 90, 0.3, 0.1)
	if math.Abs(got-90.1) > 1e-9 {
		t.Errorf("Advance(90.2, 90) = %g, want 90.1", got)
	}
}

func TestAdvance_AtTarget(t *testing.T) {
	if got := Advance(45, 45, 0.3, 0.1); got != 45 {
		t.Errorf("Advance at target = %g, want 45", got)
	}
}

func TestAdvance_NeverOvershoots(t *testing.T) {
	current, target := 0.0, 180.0
	for i := 0; i < 1000; i++ {
		next := Advance(current, target, 0.3, 0.1)
		before := math.Abs(target - current)
		after := math.Abs(target - next)
		if after > before {
			t.Fatalf("tick %d: distance grew from %g to %g", i, before, after)
		}
		if next > target {
			t.Fatalf("tick %d: overshot target, got %g", i, next)
		}
		current = next
		if current == target {
			return
		}
	}
	t.Fatalf("did not converge in 1000 ticks, current=%g", current)
}

func TestAdvance_ConvergesInBoundedTicks(t *testing.T) {
	// Distance shrinks by factor 0.3 per tick until the 0.1 floor takes
	// over; 180 degrees converges within a few dozen ticks.
	current, target := 0.0, 180.0
	ticks := 0
	for current != target {
		current = Advance(current, target, 0.3, 0.1)
		ticks++
		if ticks > 100 {
			t.Fatalf("not converged after %d ticks, current=%g", ticks, current)
		}
	}

	// ceil(log(initial/minStep) / -log(1-factor)) + 1 bounds the count.
	bound := int(math.Ceil(math.Log(180/0.1)/-math.Log(1-0.3))) + 1
	if ticks > bound {
		t.Errorf("converged in %d ticks, bound is %d", ticks, bound)
	}
}

func TestAdvance_StrictProgressEveryTick(t *testing.T) {
	current, target := 90.0, 45.0
	prev := math.Abs(target - current)
	for current != target {
		current = Advance(current, target, 0.3, 0.1)
		dist := math.Abs(target - current)
		if dist >= prev {
			t.Fatalf("distance did not strictly decrease: %g -> %g", prev, dist)
		}
		prev = dist
	}
}
