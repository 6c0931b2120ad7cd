package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/oyilmaz/pantiltd/internal/debug"
	"github.com/oyilmaz/pantiltd/internal/logic/motion"
	"github.com/oyilmaz/pantiltd/internal/logic/protocol"
)

// Banner is sent once over the transport when the controller is ready to
// accept commands.
const Banner = "Pan-Tilt servo controller ready"

// idlePeriod is the fixed pause between loop iterations, yielding to the
// host scheduler without adding noticeable command latency.
const idlePeriod = time.Millisecond

// Loop is the single-threaded control loop: it alternates between polling
// the transport for command bytes and ticking the motion controller.
// Decoder and smoother never run concurrently, so a command's reply is
// always on the wire before the next tick reads its target.
type Loop struct {
	port    io.ReadWriter
	decoder *protocol.Decoder
	motion  *motion.Controller
	settle  time.Duration
	now     func() time.Time
	readBuf [64]byte
}

// NewLoop wires the decoder and motion controller to the transport.
func NewLoop(port io.ReadWriter, dec *protocol.Decoder, m *motion.Controller, settle time.Duration) *Loop {
	return &Loop{
		port:    port,
		decoder: dec,
		motion:  m,
		settle:  settle,
		now:     time.Now,
	}
}

// Run homes the actuators, waits for them to settle, announces readiness,
// then services the transport and the smoother until ctx is cancelled or
// the transport fails.
func (l *Loop) Run(ctx context.Context) error {
	debug.Section("Control Loop")

	if err := l.motion.Home(); err != nil {
		return fmt.Errorf("home actuators: %w", err)
	}
	debug.Live("Homed, settling for %v", l.settle)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(l.settle):
	}

	if err := l.send(Banner); err != nil {
		return err
	}
	debug.Info("Ready, accepting commands")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := l.poll(); err != nil {
			return err
		}
		if err := l.motion.Tick(l.now()); err != nil {
			return fmt.Errorf("motion tick: %w", err)
		}

		time.Sleep(idlePeriod)
	}
}

// poll drains pending transport bytes into the decoder and services the
// resulting replies. Timeouts and EOF mean no data, not failure: the host
// may simply be silent.
func (l *Loop) poll() error {
	n, err := l.port.Read(l.readBuf[:])
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("transport read: %w", err)
	}
	if n == 0 {
		return nil
	}
	debug.Trace("Read %d bytes", n)

	for _, reply := range l.decoder.Feed(l.readBuf[:n]) {
		debug.Command(reply.Line)
		if reply.Target != nil {
			l.motion.SetTarget(reply.Target.Pan, reply.Target.Tilt)
		}
		if err := l.send(reply.Message); err != nil {
			return err
		}
	}
	return nil
}

// send writes one terminated line to the transport.
func (l *Loop) send(msg string) error {
	if _, err := io.WriteString(l.port, msg+"\r\n"); err != nil {
		return fmt.Errorf("transport write: %w", err)
	}
	return nil
}
