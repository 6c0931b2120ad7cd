package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/oyilmaz/pantiltd/internal/config"
	"github.com/oyilmaz/pantiltd/internal/debug"
	"github.com/oyilmaz/pantiltd/internal/hw/gpio"
	"github.com/oyilmaz/pantiltd/internal/hw/serialport"
	"github.com/oyilmaz/pantiltd/internal/hw/servo"
	"github.com/oyilmaz/pantiltd/internal/logic/axis"
	"github.com/oyilmaz/pantiltd/internal/logic/control"
	"github.com/oyilmaz/pantiltd/internal/logic/motion"
	"github.com/oyilmaz/pantiltd/internal/logic/protocol"
	"github.com/oyilmaz/pantiltd/internal/web"
)

func main() {
	// CLI flags
	webPort := &webPortFlag{defaultPort: 8080}
	flag.Var(webPort, "web", "start web monitor on port; -web= for default 8080, -web 8980 for custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	device := flag.String("device", "", "override serial device path")
	baud := flag.Int("baud", 0, "override serial baud rate")
	console := flag.Bool("console", false, "use stdin/stdout instead of a serial device")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	// Validate and apply CLI overrides (zero values mean "use config default")
	if err := validateOverrides(*device, *baud); err != nil {
		log.Fatalf("invalid CLI override: %v", err)
	}
	applyOverrides(cfg, *device, *baud, *console)

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)

	// Initialize GPIO driver
	debug.Value("Mock GPIO", cfg.Defaults.MockGPIO)
	debug.Step(1, "Initializing GPIO driver")
	gpioDriver, err := gpio.NewDriver(cfg.Defaults.MockGPIO)
	if err != nil {
		log.Fatalf("init GPIO failed: %v", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()

	// Initialize servos
	debug.Step(2, "Initializing servos")
	panServo, err := servo.New(gpioDriver, servo.Config{
		Pin:        cfg.PanServo.Pin,
		MinPulseUs: cfg.PanServo.MinPulseUs,
		MaxPulseUs: cfg.PanServo.MaxPulseUs,
	})
	if err != nil {
		log.Fatalf("init pan servo failed: %v", err)
	}
	tiltServo, err := servo.New(gpioDriver, servo.Config{
		Pin:        cfg.TiltServo.Pin,
		MinPulseUs: cfg.TiltServo.MinPulseUs,
		MaxPulseUs: cfg.TiltServo.MaxPulseUs,
	})
	if err != nil {
		log.Fatalf("init tilt servo failed: %v", err)
	}
	debug.Value("Pan servo pin", cfg.PanServo.Pin)
	debug.Value("Tilt servo pin", cfg.TiltServo.Pin)

	// Open the transport
	debug.Step(3, "Opening transport")
	var port serialport.Port
	if cfg.Defaults.ConsoleSerial {
		port = serialport.NewConsole(os.Stdin, os.Stdout)
	} else {
		port, err = serialport.Open(cfg.Serial.Device, cfg.Serial.BaudRate, cfg.ReadTimeout())
		if err != nil {
			log.Fatalf("open transport failed: %v", err)
		}
	}
	defer func() {
		if err := port.Close(); err != nil {
			log.Printf("closing transport failed: %v", err)
		}
	}()

	// Wire decoder, motion controller and control loop
	debug.Step(4, "Creating decoder and motion controller")
	panLimits := axis.Limits{Min: cfg.PanServo.MinAngleDeg, Max: cfg.PanServo.MaxAngleDeg}
	tiltLimits := axis.Limits{Min: cfg.TiltServo.MinAngleDeg, Max: cfg.TiltServo.MaxAngleDeg}

	decoder := protocol.NewDecoder(panLimits, tiltLimits)
	motionCtrl := motion.NewController(panServo, tiltServo, panLimits, tiltLimits,
		cfg.Motion.CenterAngleDeg, motion.Params{
			TickPeriod:      cfg.TickPeriod(),
			SmoothingFactor: cfg.Motion.SmoothingFactor,
			MinStep:         cfg.Motion.MinStepDeg,
		})
	loop := control.NewLoop(port, decoder, motionCtrl, cfg.SettleDelay())

	// Optional web monitor (read-only observer)
	if p := webPort.port(); p > 0 {
		broadcaster := web.NewBroadcaster()
		debug.SetOutput(io.MultiWriter(os.Stdout, web.Writer(broadcaster)))

		srv := web.NewServer(fmt.Sprintf(":%d", p), broadcaster, func() web.Snapshot {
			s := motionCtrl.Snapshot()
			return web.Snapshot{
				PanCurrent:  s.PanCurrent,
				PanTarget:   s.PanTarget,
				TiltCurrent: s.TiltCurrent,
				TiltTarget:  s.TiltTarget,
			}
		})
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Printf("web monitor: %v", err)
			}
		}()
	}

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("control loop: %v", err)
	}
	debug.Section("Shutdown")
}

// validateOverrides checks non-zero CLI overrides. Zero values are ignored
// (they mean "use config default").
func validateOverrides(device string, baud int) error {
	if device != "" {
		if _, err := os.Stat(device); err != nil {
			return fmt.Errorf("serial device %s: %w", device, err)
		}
	}
	if baud != 0 {
		if baud < 300 || baud > 4000000 {
			return fmt.Errorf("baud rate must be between 300 and 4000000, got %d", baud)
		}
	}
	return nil
}

// applyOverrides mutates cfg with CLI overrides. Only non-zero values apply.
func applyOverrides(cfg *config.Config, device string, baud int, console bool) {
	if device != "" {
		cfg.Serial.Device = device
	}
	if baud != 0 {
		cfg.Serial.BaudRate = baud
	}
	if console {
		cfg.Defaults.ConsoleSerial = true
	}
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= or -web 8080 → 8080, -web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }
