package motion

import (
	"math"
	"sync"
	"time"

	"github.com/oyilmaz/pantiltd/internal/debug"
	"github.com/oyilmaz/pantiltd/internal/logic/axis"
)

// Actuator receives absolute angles in degrees. Implemented by servo.Servo.
type Actuator interface {
	Write(angle float64) error
}

// Params are the smoothing constants.
type Params struct {
	TickPeriod      time.Duration // minimum interval between updates
	SmoothingFactor float64       // fraction of remaining distance per tick, (0,1)
	MinStep         float64       // movement floor in degrees
}

// axisState tracks one axis between ticks. The rounded value of the last
// actuator write is kept so unchanged positions are not rewritten.
type axisState struct {
	name        string
	out         Actuator
	limits      axis.Limits
	current     float64
	target      float64
	lastWritten float64
	wrote       bool
}

// Controller orchestrates pan/tilt movement: it holds current and target
// angle per axis and advances current toward target on a fixed tick,
// writing the result to the actuators. It is an intermediate layer between
// the command decoder and the low-level servo drivers.
//
// The mutex guards the handoff between the control loop and read-only
// observers (the web monitor); the loop itself is single-threaded.
type Controller struct {
	mu       sync.RWMutex
	pan      axisState
	tilt     axisState
	params   Params
	lastTick time.Time
	ticked   bool
}

// Status is a read-only snapshot of both axes.
type Status struct {
	PanCurrent  float64
	PanTarget   float64
	TiltCurrent float64
	TiltTarget  float64
}

// NewController creates a controller with both axes at the center angle.
func NewController(pan, tilt Actuator, panLimits, tiltLimits axis.Limits, center float64, p Params) *Controller {
	return &Controller{
		pan: axisState{
			name:    "pan",
			out:     pan,
			limits:  panLimits,
			current: panLimits.Clamp(center),
			target:  panLimits.Clamp(center),
		},
		tilt: axisState{
			name:    "tilt",
			out:     tilt,
			limits:  tiltLimits,
			current: tiltLimits.Clamp(center),
			target:  tiltLimits.Clamp(center),
		},
		params: p,
	}
}

// Home drives both actuators straight to their startup position. Called
// once before the control loop starts ticking.
func (c *Controller) Home() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, a := range []*axisState{&c.pan, &c.tilt} {
		if err := a.write(a.current); err != nil {
			return err
		}
	}
	return nil
}

// SetTarget publishes a new clamped target for both axes atomically.
func (c *Controller) SetTarget(pan, tilt float64) {
	c.mu.Lock()
	c.pan.target = c.pan.limits.Clamp(pan)
	c.tilt.target = c.tilt.limits.Clamp(tilt)
	c.mu.Unlock()

	debug.Target(pan, tilt)
}

// Tick advances both axes toward their targets if at least one tick period
// elapsed since the previous update. Sub-period calls do nothing.
func (c *Controller) Tick(now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ticked && now.Sub(c.lastTick) < c.params.TickPeriod {
		return nil
	}
	c.lastTick = now
	c.ticked = true

	for _, a := range []*axisState{&c.pan, &c.tilt} {
		if a.current == a.target {
			continue
		}
		a.current = axis.Advance(a.current, a.target, c.params.SmoothingFactor, c.params.MinStep)
		debug.Tick(a.name, a.current, a.target)
		if err := a.write(a.current); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns the current state of both axes.
func (c *Controller) Snapshot() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Status{
		PanCurrent:  c.pan.current,
		PanTarget:   c.pan.target,
		TiltCurrent: c.tilt.current,
		TiltTarget:  c.tilt.target,
	}
}

// write sends the angle to the actuator rounded to whole degrees, skipping
// the write when the rounded value did not change.
func (a *axisState) write(angle float64) error {
	rounded := math.Round(angle)
	if a.wrote && rounded == a.lastWritten {
		return nil
	}
	if err := a.out.Write(rounded); err != nil {
		return err
	}
	a.lastWritten = rounded
	a.wrote = true
	return nil
}
