package serialport

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"

	"github.com/oyilmaz/pantiltd/internal/debug"
)

// Port is the byte transport to the vision host. Reads must return 0 bytes
// instead of blocking when no data is pending, so the control loop can poll
// between smoother ticks.
type Port = io.ReadWriteCloser

// Open opens a real serial device. The short read timeout provides the
// non-blocking poll behavior.
func Open(device string, baud int, readTimeout time.Duration) (Port, error) {
	debug.Info("Opening serial port %s (%d baud)", device, baud)

	p, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: readTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}
	return p, nil
}

// Console adapts a reader/writer pair (typically stdin/stdout) into a Port
// for development without a serial device, the same way MockGPIO replaces
// the real pins. A pump goroutine does the blocking reads; Read itself only
// drains what has already arrived.
type Console struct {
	out     io.Writer
	data    chan []byte
	pending []byte
}

// NewConsole creates a console transport over the given streams.
func NewConsole(in io.Reader, out io.Writer) *Console {
	debug.Info("Using console transport (development mode)")

	c := &Console{
		out:  out,
		data: make(chan []byte, 16),
	}
	go c.pump(in)
	return c
}

func (c *Console) pump(in io.Reader) {
	buf := make([]byte, 64)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			c.data <- chunk
		}
		if err != nil {
			close(c.data)
			return
		}
	}
}

// Read returns pending input, or (0, nil) when nothing has arrived yet.
// After the underlying reader ends it returns io.EOF.
func (c *Console) Read(p []byte) (int, error) {
	if len(c.pending) == 0 {
		select {
		case chunk, ok := <-c.data:
			if !ok {
				return 0, io.EOF
			}
			c.pending = chunk
		default:
			return 0, nil
		}
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

func (c *Console) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

func (c *Console) Close() error {
	return nil
}
