package serialport

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrOpenFailed  = errors.New("failed to open serial port")
	ErrWriteFailed = errors.New("failed to write to serial port")
	ErrReadFailed  = errors.New("failed to read from serial port")
)

// drainTimeout bounds each poll read so the acquisition loop never waits
// on a quiet instrument.
const drainTimeout = 5 * time.Millisecond

const readBufferSize = 4096

// Transport owns at most one open serial port at a time. Opening a new
// port closes the previous one first; Close is idempotent. All access goes
// through a single mutex so the port handle is never touched concurrently.
type Transport struct {
	factory Factory

	mu   sync.Mutex
	port Porter
	buf  []byte
}

// NewTransport creates a Transport that opens ports through the given
// factory.
func NewTransport(factory Factory) *Transport {
	return &Transport{
		factory: factory,
		buf:     make([]byte, readBufferSize),
	}
}

// Enumerate lists candidate serial port paths.
func (t *Transport) Enumerate() []string {
	return t.factory.Enumerate()
}

// Open opens the port at the given path, closing any previously open port
// first. Options are validated here so that a bad baud rate is rejected
// before the driver is touched.
func (t *Transport) Open(path string, opts Options) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	opts, err := opts.Normalize()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	if t.port != nil {
		t.port.Close()
		t.port = nil
	}

	port, err := t.factory.Open(path, opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	if err := port.SetReadTimeout(drainTimeout); err != nil {
		port.Close()
		return fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	t.port = port
	return nil
}

// Connected reports whether a port is currently open.
func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil
}

// Close closes the open port, if any.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	return err
}

// Write sends the full contents of p to the port.
func (t *Transport) Write(p []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return fmt.Errorf("%w: port not open", ErrWriteFailed)
	}
	n, err := t.port.Write(p)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if n != len(p) {
		return fmt.Errorf("%w: short write (%d of %d bytes)", ErrWriteFailed, n, len(p))
	}
	return nil
}

// ReadAvailable drains whatever bytes the instrument has already sent. It
// never blocks longer than the port read timeout; an empty result means
// nothing was ready. The returned slice is a copy and safe to retain.
func (t *Transport) ReadAvailable() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return nil, fmt.Errorf("%w: port not open", ErrReadFailed)
	}
	n, err := t.port.Read(t.buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]byte, n)
	copy(out, t.buf[:n])
	return out, nil
}
