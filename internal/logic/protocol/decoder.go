package protocol

import (
	"fmt"
	"strings"

	"github.com/oyilmaz/pantiltd/internal/logic/axis"
)

// MaxLineLen caps the pending-command buffer. A line that never terminates
// would otherwise grow without bound on a stream that runs forever.
const MaxLineLen = 128

// Target is a validated, clamped pan/tilt command.
type Target struct {
	Pan  float64
	Tilt float64
}

// Reply is the outcome of one processed command line. Target is nil for
// malformed or over-long lines. Message is the exact text to send back to
// the host, without the line terminator.
type Reply struct {
	Line    string
	Target  *Target
	Message string
}

// Decoder assembles incoming bytes into lines and parses them into clamped
// pan/tilt targets. It owns the pending-line buffer; commands use the form
// P<num>T<num> terminated by \n or \r.
type Decoder struct {
	buf      []byte
	dropping bool // swallowing the rest of an over-long line
	pan      axis.Limits
	tilt     axis.Limits
}

// NewDecoder creates a decoder that clamps parsed values to the given
// per-axis limits.
func NewDecoder(pan, tilt axis.Limits) *Decoder {
	return &Decoder{
		buf:  make([]byte, 0, MaxLineLen),
		pan:  pan,
		tilt: tilt,
	}
}

// Feed consumes raw bytes and returns one Reply per completed non-empty
// line. Empty lines (including the gap inside a \r\n pair) are ignored.
func (d *Decoder) Feed(p []byte) []Reply {
	var replies []Reply

	for _, b := range p {
		if b == '\n' || b == '\r' {
			if d.dropping {
				d.dropping = false
				continue
			}
			if len(d.buf) == 0 {
				continue
			}
			line := string(d.buf)
			d.buf = d.buf[:0]
			replies = append(replies, d.process(line))
			continue
		}

		if d.dropping {
			continue
		}
		if len(d.buf) >= MaxLineLen {
			// Overflow: report once, discard the buffer and the rest of
			// this line up to the next terminator.
			d.buf = d.buf[:0]
			d.dropping = true
			replies = append(replies, Reply{
				Line:    "",
				Message: "Error: Command too long - discarded",
			})
			continue
		}
		d.buf = append(d.buf, b)
	}

	return replies
}

// process parses one complete line into a Reply.
func (d *Decoder) process(line string) Reply {
	tgt, err := d.parseLine(line)
	if err != nil {
		return Reply{
			Line:    line,
			Message: fmt.Sprintf("Error: Invalid command format - %s", line),
		}
	}
	return Reply{
		Line:    line,
		Target:  &tgt,
		Message: fmt.Sprintf("OK: P=%.1f, T=%.1f", tgt.Pan, tgt.Tilt),
	}
}

// parseLine extracts and clamps the pan/tilt values from a P<num>T<num>
// line. Both markers must be present, with P before T.
func (d *Decoder) parseLine(line string) (Target, error) {
	pIdx := strings.IndexByte(line, 'P')
	tIdx := strings.IndexByte(line, 'T')
	if pIdx < 0 || tIdx < 0 {
		return Target{}, fmt.Errorf("missing P or T marker in %q", line)
	}
	if tIdx < pIdx {
		return Target{}, fmt.Errorf("T before P in %q", line)
	}

	pan := parseNumber(line[pIdx+1 : tIdx])
	tilt := parseNumber(line[tIdx+1:])

	return Target{
		Pan:  d.pan.Clamp(pan),
		Tilt: d.tilt.Clamp(tilt),
	}, nil
}

// parseNumber reads a decimal number ([-+]?digits[.digits]) from the start
// of s. Anything without a valid numeric prefix parses to 0, matching the
// permissive behavior the host relies on.
func parseNumber(s string) float64 {
	i := 0
	negative := false
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		negative = s[i] == '-'
		i++
	}

	start := i
	intPart := 0.0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		intPart = intPart*10 + float64(s[i]-'0')
		i++
	}

	fracPart := 0.0
	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			fracPart = fracPart*10 + float64(s[i]-'0')
			fracDigits++
			i++
		}
	}

	if i == start || (i == start+1 && s[start] == '.') {
		return 0 // no digits found
	}

	value := intPart
	if fracDigits > 0 {
		divisor := 1.0
		for j := 0; j < fracDigits; j++ {
			divisor *= 10
		}
		value += fracPart / divisor
	}

	if negative {
		value = -value
	}
	return value
}
