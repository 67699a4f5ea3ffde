package spectro

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// framePrefix starts every data line sent by the instrument.
const framePrefix = "d#"

// MalformedLineError reports a protocol line that did not decode. The
// acquisition loop drops these and keeps going; one bad line never stops
// the stream.
type MalformedLineError struct {
	Line string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed instrument line %q", e.Line)
}

// Result is the outcome of decoding one complete line: either a Sample or
// the error describing why the line was rejected.
type Result struct {
	Sample Sample
	Err    error
}

// Decoder turns the raw serial byte stream into samples. Bytes belonging
// to a line that has not yet seen its terminating newline stay buffered
// across Feed calls, so lines split by the read cadence reassemble
// correctly.
//
// The accumulator is unbounded: a source that never sends a newline will
// grow it without limit.
type Decoder struct {
	buf bytes.Buffer
}

// Feed appends p to the internal buffer and decodes every complete line it
// now holds, in order. A trailing partial line is retained for the next
// call.
func (d *Decoder) Feed(p []byte) []Result {
	d.buf.Write(p)

	var results []Result
	for {
		raw := d.buf.Bytes()
		i := bytes.IndexByte(raw, '\n')
		if i < 0 {
			return results
		}
		line := strings.TrimSpace(string(raw[:i]))
		d.buf.Next(i + 1)
		results = append(results, decodeLine(line))
	}
}

// Pending returns the number of buffered bytes still awaiting a newline.
func (d *Decoder) Pending() int {
	return d.buf.Len()
}

// Reset discards any buffered partial line.
func (d *Decoder) Reset() {
	d.buf.Reset()
}

// decodeLine applies the frame rule: the line must start with "d#", split
// on "#" into exactly three tokens, and carry integer wavelength and
// intensity tokens.
func decodeLine(line string) Result {
	if !strings.HasPrefix(line, framePrefix) {
		return Result{Err: &MalformedLineError{Line: line}}
	}
	parts := strings.Split(line, "#")
	if len(parts) != 3 {
		return Result{Err: &MalformedLineError{Line: line}}
	}
	wavelength, err := strconv.Atoi(parts[1])
	if err != nil {
		return Result{Err: &MalformedLineError{Line: line}}
	}
	intensity, err := strconv.Atoi(parts[2])
	if err != nil {
		return Result{Err: &MalformedLineError{Line: line}}
	}
	return Result{Sample: Sample{Wavelength: wavelength, Intensity: intensity}}
}
