package servo

import (
	"fmt"
	"math"

	"github.com/oyilmaz/pantiltd/internal/debug"
	"github.com/oyilmaz/pantiltd/internal/hw/gpio"
)

// Standard hobby-servo signal: 50 Hz pulse train, position encoded in the
// pulse width. The PWM cycle is sized so one duty step equals one microsecond.
const (
	periodUs = 20000 // 20 ms frame
	pwmFreq  = 50 * periodUs
)

// Config holds the hardware configuration for one servo channel.
type Config struct {
	Pin        int // BCM pin with hardware PWM (12, 13, 18 or 19)
	MinPulseUs int // pulse width at 0°
	MaxPulseUs int // pulse width at 180°
}

// Servo drives a positional servo over a hardware PWM channel.
// Open loop: the servo gives no position feedback.
type Servo struct {
	gpio gpio.Driver
	cfg  Config
}

// New configures the PWM channel and returns a servo handle.
// No pulse is emitted until the first Write.
func New(g gpio.Driver, cfg Config) (*Servo, error) {
	if cfg.MinPulseUs <= 0 || cfg.MaxPulseUs <= cfg.MinPulseUs {
		return nil, fmt.Errorf("servo pin %d: invalid pulse range [%d, %d]", cfg.Pin, cfg.MinPulseUs, cfg.MaxPulseUs)
	}
	if err := g.SetupPWM(cfg.Pin, pwmFreq, periodUs); err != nil {
		return nil, fmt.Errorf("setup PWM on pin %d: %w", cfg.Pin, err)
	}
	return &Servo{gpio: g, cfg: cfg}, nil
}

// Write moves the servo to the given angle in degrees. Angles outside
// [0, 180] are clamped to the nearest end of travel.
func (s *Servo) Write(angle float64) error {
	if angle < 0 {
		angle = 0
	}
	if angle > 180 {
		angle = 180
	}

	span := float64(s.cfg.MaxPulseUs - s.cfg.MinPulseUs)
	pulse := float64(s.cfg.MinPulseUs) + span*angle/180.0
	duty := uint32(math.Round(pulse))

	debug.Trace("Servo pin %d: angle=%.2f pulse=%dus", s.cfg.Pin, angle, duty)
	return s.gpio.WritePWM(s.cfg.Pin, duty)
}
