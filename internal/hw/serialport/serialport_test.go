package serialport

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"
)

func readAllPolled(t *testing.T, c *Console) []byte {
	t.Helper()
	var got []byte
	buf := make([]byte, 8)
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		n, err := c.Read(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			return got
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}
	t.Fatal("timeout waiting for EOF")
	return nil
}

func TestConsole_ReadDoesNotBlock(t *testing.T) {
	// A reader that never produces data: Read must return (0, nil)
	// immediately instead of blocking the control loop.
	c := NewConsole(blockedReader{}, &bytes.Buffer{})

	done := make(chan struct{})
	go func() {
		var buf [8]byte
		n, err := c.Read(buf[:])
		if n != 0 || err != nil {
			t.Errorf("Read = (%d, %v), want (0, nil)", n, err)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Read blocked")
	}
}

func TestConsole_DeliversInputThenEOF(t *testing.T) {
	c := NewConsole(strings.NewReader("P90T45\n"), &bytes.Buffer{})

	got := readAllPolled(t, c)
	if string(got) != "P90T45\n" {
		t.Errorf("read %q, want %q", got, "P90T45\n")
	}
}

func TestConsole_WritesPassThrough(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader(""), &out)

	if _, err := io.WriteString(c, "OK: P=90.0, T=45.0\r\n"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "OK: P=90.0, T=45.0\r\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestConsole_CloseIsNoop(t *testing.T) {
	c := NewConsole(strings.NewReader(""), &bytes.Buffer{})
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

// blockedReader blocks forever, like an idle terminal.
type blockedReader struct{}

func (blockedReader) Read(p []byte) (int, error) {
	select {}
}
