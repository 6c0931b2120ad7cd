package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SerialConfig describes the serial link to the vision host.
type SerialConfig struct {
	Device        string `yaml:"device"`          // e.g., "/dev/serial0"
	BaudRate      int    `yaml:"baud_rate"`       // line rate, host side uses 115200
	ReadTimeoutMs int    `yaml:"read_timeout_ms"` // poll timeout; keeps the control loop non-blocking
}

// ServoConfig holds the configuration for one servo channel.
type ServoConfig struct {
	Pin         int     `yaml:"pin"`           // BCM pin, must support hardware PWM (12, 13, 18 or 19)
	MinPulseUs  int     `yaml:"min_pulse_us"`  // pulse width at MinAngleDeg
	MaxPulseUs  int     `yaml:"max_pulse_us"`  // pulse width at MaxAngleDeg
	MinAngleDeg float64 `yaml:"min_angle_deg"` // mechanical lower limit
	MaxAngleDeg float64 `yaml:"max_angle_deg"` // mechanical upper limit
}

// MotionConfig contains the smoothing constants.
type MotionConfig struct {
	TickPeriodMs    int     `yaml:"tick_period_ms"`   // period between smoother updates
	SmoothingFactor float64 `yaml:"smoothing_factor"` // fraction of remaining distance per tick, (0,1)
	MinStepDeg      float64 `yaml:"min_step_deg"`     // movement floor, guarantees finite convergence
	CenterAngleDeg  float64 `yaml:"center_angle_deg"` // startup position for both axes
	SettleDelayMs   int     `yaml:"settle_delay_ms"`  // wait after homing before accepting commands
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel    int  `yaml:"debug_level"`    // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO      bool `yaml:"mock_gpio"`      // use mock GPIO (true=dev/test, false=real Raspberry Pi)
	ConsoleSerial bool `yaml:"console_serial"` // use stdin/stdout instead of a serial device (dev mode)
}

// Config aggregates all application configuration.
type Config struct {
	Serial    SerialConfig   `yaml:"serial"`
	PanServo  ServoConfig    `yaml:"pan_servo"`
	TiltServo ServoConfig    `yaml:"tilt_servo"`
	Motion    MotionConfig   `yaml:"motion"`
	Defaults  DefaultsConfig `yaml:"defaults"`
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// Serial defaults
	if cfg.Serial.Device == "" {
		cfg.Serial.Device = "/dev/serial0"
	}
	if cfg.Serial.BaudRate <= 0 {
		cfg.Serial.BaudRate = 115200
	}
	if cfg.Serial.ReadTimeoutMs <= 0 {
		cfg.Serial.ReadTimeoutMs = 1
	}

	// Servo defaults and validation
	if err := normalizeServo("pan_servo", &cfg.PanServo); err != nil {
		return nil, err
	}
	if err := normalizeServo("tilt_servo", &cfg.TiltServo); err != nil {
		return nil, err
	}

	// Motion defaults and validation
	if cfg.Motion.TickPeriodMs <= 0 {
		cfg.Motion.TickPeriodMs = 8
	}
	if cfg.Motion.SmoothingFactor == 0 {
		cfg.Motion.SmoothingFactor = 0.3
	}
	if cfg.Motion.SmoothingFactor <= 0 || cfg.Motion.SmoothingFactor >= 1 {
		return nil, fmt.Errorf("smoothing_factor must be in (0, 1), got %g", cfg.Motion.SmoothingFactor)
	}
	if cfg.Motion.MinStepDeg == 0 {
		cfg.Motion.MinStepDeg = 0.1
	}
	if cfg.Motion.MinStepDeg < 0 {
		return nil, fmt.Errorf("min_step_deg must be > 0, got %g", cfg.Motion.MinStepDeg)
	}
	if cfg.Motion.CenterAngleDeg == 0 {
		cfg.Motion.CenterAngleDeg = 90
	}
	if cfg.Motion.CenterAngleDeg < cfg.PanServo.MinAngleDeg || cfg.Motion.CenterAngleDeg > cfg.PanServo.MaxAngleDeg {
		return nil, fmt.Errorf("center_angle_deg %g outside pan limits [%g, %g]",
			cfg.Motion.CenterAngleDeg, cfg.PanServo.MinAngleDeg, cfg.PanServo.MaxAngleDeg)
	}
	if cfg.Motion.CenterAngleDeg < cfg.TiltServo.MinAngleDeg || cfg.Motion.CenterAngleDeg > cfg.TiltServo.MaxAngleDeg {
		return nil, fmt.Errorf("center_angle_deg %g outside tilt limits [%g, %g]",
			cfg.Motion.CenterAngleDeg, cfg.TiltServo.MinAngleDeg, cfg.TiltServo.MaxAngleDeg)
	}
	if cfg.Motion.SettleDelayMs <= 0 {
		cfg.Motion.SettleDelayMs = 500
	}

	if cfg.Defaults.DebugLevel < 0 || cfg.Defaults.DebugLevel > 4 {
		return nil, fmt.Errorf("debug_level must be 0-4, got %d", cfg.Defaults.DebugLevel)
	}

	return &cfg, nil
}

// normalizeServo applies defaults to a servo section and validates it.
func normalizeServo(name string, s *ServoConfig) error {
	if s.Pin <= 0 {
		return fmt.Errorf("%s.pin is required", name)
	}
	if s.MinPulseUs <= 0 {
		s.MinPulseUs = 500
	}
	if s.MaxPulseUs <= 0 {
		s.MaxPulseUs = 2400
	}
	if s.MinPulseUs >= s.MaxPulseUs {
		return fmt.Errorf("%s: min_pulse_us %d must be < max_pulse_us %d", name, s.MinPulseUs, s.MaxPulseUs)
	}
	if s.MinAngleDeg == 0 && s.MaxAngleDeg == 0 {
		s.MinAngleDeg = 0
		s.MaxAngleDeg = 180
	}
	if s.MinAngleDeg > s.MaxAngleDeg {
		return fmt.Errorf("%s: min_angle_deg %g must be <= max_angle_deg %g", name, s.MinAngleDeg, s.MaxAngleDeg)
	}
	if s.MinAngleDeg < 0 || s.MaxAngleDeg > 180 {
		return fmt.Errorf("%s: angle limits must stay within [0, 180], got [%g, %g]", name, s.MinAngleDeg, s.MaxAngleDeg)
	}
	return nil
}

// TickPeriod returns the duration between two smoother updates.
func (c *Config) TickPeriod() time.Duration {
	return time.Duration(c.Motion.TickPeriodMs) * time.Millisecond
}

// SettleDelay returns the wait after homing before the ready banner.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Motion.SettleDelayMs) * time.Millisecond
}

// ReadTimeout returns the serial poll timeout.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Serial.ReadTimeoutMs) * time.Millisecond
}
