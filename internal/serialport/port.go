// Package serialport owns the physical serial link to the spectrometer:
// opening and closing the port, writing command frames, and draining
// whatever bytes the instrument has produced since the last poll.
package serialport

import (
	"io"
	"time"
)

// Porter defines the minimal interface needed for a serial port.
// This abstraction enables unit testing without real spectrometer hardware.
type Porter interface {
	io.ReadWriter
	io.Closer
	// SetReadTimeout bounds how long a Read may block. With a short
	// timeout a Read returns whatever the driver has buffered, or
	// nothing, which is how the poll loop stays non-blocking.
	SetReadTimeout(timeout time.Duration) error
}

// Factory defines an interface for creating serial ports.
// This abstraction enables dependency injection of serial port creation.
type Factory interface {
	// Open opens a serial port at the specified path with the given options.
	Open(path string, opts Options) (Porter, error)

	// Enumerate lists candidate port paths. Enumeration is best-effort:
	// a failure yields an empty list, never an error.
	Enumerate() []string
}
