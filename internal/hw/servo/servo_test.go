package servo

import (
	"testing"

	"github.com/oyilmaz/pantiltd/internal/hw/gpio"
)

// recordingDriver records PWM calls for verification.
type recordingDriver struct {
	setups []pwmSetup
	duties []pwmWrite
}

type pwmSetup struct {
	pin    int
	freqHz int
	cycle  uint32
}

type pwmWrite struct {
	pin  int
	duty uint32
}

func (d *recordingDriver) SetupPin(pin int, mode gpio.PinMode) error { return nil }
func (d *recordingDriver) WritePin(pin int, level gpio.Level) error  { return nil }
func (d *recordingDriver) Close() error                              { return nil }

func (d *recordingDriver) SetupPWM(pin int, freqHz int, cycle uint32) error {
	d.setups = append(d.setups, pwmSetup{pin: pin, freqHz: freqHz, cycle: cycle})
	return nil
}

func (d *recordingDriver) WritePWM(pin int, duty uint32) error {
	d.duties = append(d.duties, pwmWrite{pin: pin, duty: duty})
	return nil
}

func testConfig() Config {
	return Config{Pin: 12, MinPulseUs: 500, MaxPulseUs: 2400}
}

func TestNew_ConfiguresPWMChannel(t *testing.T) {
	drv := &recordingDriver{}
	if _, err := New(drv, testConfig()); err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(drv.setups) != 1 {
		t.Fatalf("expected 1 PWM setup, got %d", len(drv.setups))
	}
	s := drv.setups[0]
	if s.pin != 12 {
		t.Errorf("setup pin = %d, want 12", s.pin)
	}
	// 50 Hz frame with 1 us duty resolution.
	if s.cycle != 20000 {
		t.Errorf("cycle = %d, want 20000", s.cycle)
	}
	if s.freqHz != 50*20000 {
		t.Errorf("freq = %d, want %d", s.freqHz, 50*20000)
	}
}

func TestNew_RejectsInvalidPulseRange(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero_min", Config{Pin: 12, MinPulseUs: 0, MaxPulseUs: 2400}},
		{"inverted", Config{Pin: 12, MinPulseUs: 2400, MaxPulseUs: 500}},
		{"equal", Config{Pin: 12, MinPulseUs: 1500, MaxPulseUs: 1500}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(&recordingDriver{}, tc.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestWrite_PulseMapping(t *testing.T) {
	cases := []struct {
		name  string
		angle float64
		duty  uint32
	}{
		{"zero", 0, 500},
		{"center", 90, 1450},
		{"full", 180, 2400},
		{"quarter", 45, 975},
		{"clamped_low", -20, 500},
		{"clamped_high", 300, 2400},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			drv := &recordingDriver{}
			s, err := New(drv, testConfig())
			if err != nil {
				t.Fatal(err)
			}
			if err := s.Write(tc.angle); err != nil {
				t.Fatal(err)
			}
			if len(drv.duties) != 1 {
				t.Fatalf("expected 1 PWM write, got %d", len(drv.duties))
			}
			if got := drv.duties[0].duty; got != tc.duty {
				t.Errorf("Write(%g) duty = %d, want %d", tc.angle, got, tc.duty)
			}
		})
	}
}

func TestWrite_FractionalAngleRounds(t *testing.T) {
	drv := &recordingDriver{}
	s, err := New(drv, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	// 1900/180 us per degree; 10.5 deg -> 500 + 110.83... -> 611.
	if err := s.Write(10.5); err != nil {
		t.Fatal(err)
	}
	if got := drv.duties[0].duty; got != 611 {
		t.Errorf("duty = %d, want 611", got)
	}
}
