package serialport

import (
	"errors"
	"testing"
)

func TestTransport_OpenSetsReadTimeout(t *testing.T) {
	port := NewTestablePort()
	transport := NewTransport(NewMockFactory(port))

	if err := transport.Open("/dev/ttyUSB0", Options{BaudRate: 9600}); err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	if port.ReadTimeout != drainTimeout {
		t.Errorf("read timeout = %v, want %v", port.ReadTimeout, drainTimeout)
	}
	if !transport.Connected() {
		t.Error("Connected() = false after Open")
	}
}

func TestTransport_OpenClosesPreviousPort(t *testing.T) {
	first := NewTestablePort()
	factory := NewMockFactory(first)
	transport := NewTransport(factory)

	if err := transport.Open("/dev/ttyUSB0", Options{}); err != nil {
		t.Fatalf("first Open() error: %v", err)
	}

	second := NewTestablePort()
	factory.Port = second
	if err := transport.Open("/dev/ttyUSB1", Options{}); err != nil {
		t.Fatalf("second Open() error: %v", err)
	}

	if !first.Closed {
		t.Error("first port not closed by reconnect")
	}
	if second.Closed {
		t.Error("second port closed unexpectedly")
	}
}

func TestTransport_OpenRejectsBadBaudBeforeDriver(t *testing.T) {
	factory := NewMockFactory(NewTestablePort())
	transport := NewTransport(factory)

	err := transport.Open("/dev/ttyUSB0", Options{BaudRate: 12345})
	if !errors.Is(err, ErrOpenFailed) {
		t.Fatalf("Open() error = %v, want ErrOpenFailed", err)
	}
	if len(factory.OpenCalls) != 0 {
		t.Error("driver Open called despite invalid options")
	}
}

func TestTransport_OpenDriverFailure(t *testing.T) {
	factory := NewMockFactory(nil)
	factory.Error = errors.New("no such device")
	transport := NewTransport(factory)

	err := transport.Open("/dev/ttyUSB9", Options{})
	if !errors.Is(err, ErrOpenFailed) {
		t.Fatalf("Open() error = %v, want ErrOpenFailed", err)
	}
	if transport.Connected() {
		t.Error("Connected() = true after failed Open")
	}
}

func TestTransport_CloseIsIdempotent(t *testing.T) {
	port := NewTestablePort()
	transport := NewTransport(NewMockFactory(port))

	if err := transport.Open("/dev/ttyUSB0", Options{}); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := transport.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := transport.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
	if transport.Connected() {
		t.Error("Connected() = true after Close")
	}
}

func TestTransport_Write(t *testing.T) {
	port := NewTestablePort()
	transport := NewTransport(NewMockFactory(port))

	if err := transport.Write([]byte("STOP\n")); !errors.Is(err, ErrWriteFailed) {
		t.Errorf("Write() before Open error = %v, want ErrWriteFailed", err)
	}

	if err := transport.Open("/dev/ttyUSB0", Options{}); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := transport.Write([]byte("STOP\n")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if got := string(port.WrittenData()); got != "STOP\n" {
		t.Errorf("written %q, want %q", got, "STOP\n")
	}

	port.WriteError = errors.New("io failure")
	if err := transport.Write([]byte("x")); !errors.Is(err, ErrWriteFailed) {
		t.Errorf("Write() error = %v, want ErrWriteFailed", err)
	}
}

func TestTransport_ReadAvailable(t *testing.T) {
	port := NewTestablePort()
	transport := NewTransport(NewMockFactory(port))

	if _, err := transport.ReadAvailable(); !errors.Is(err, ErrReadFailed) {
		t.Errorf("ReadAvailable() before Open error = %v, want ErrReadFailed", err)
	}

	if err := transport.Open("/dev/ttyUSB0", Options{}); err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	// quiet port reads as empty, not as an error
	data, err := transport.ReadAvailable()
	if err != nil {
		t.Fatalf("ReadAvailable() on quiet port error: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("ReadAvailable() on quiet port = %q, want empty", data)
	}

	port.AddReadData([]byte("d#500#800\n"))
	data, err = transport.ReadAvailable()
	if err != nil {
		t.Fatalf("ReadAvailable() error: %v", err)
	}
	if string(data) != "d#500#800\n" {
		t.Errorf("ReadAvailable() = %q, want the buffered line", data)
	}

	port.ReadError = errors.New("io failure")
	if _, err := transport.ReadAvailable(); !errors.Is(err, ErrReadFailed) {
		t.Errorf("ReadAvailable() error = %v, want ErrReadFailed", err)
	}
}

func TestTransport_Enumerate(t *testing.T) {
	factory := NewMockFactory(nil)
	factory.Ports = []string{"/dev/ttyUSB0", "/dev/ttyACM0"}
	transport := NewTransport(factory)

	ports := transport.Enumerate()
	if len(ports) != 2 || ports[0] != "/dev/ttyUSB0" {
		t.Errorf("Enumerate() = %v", ports)
	}
}
