package serialport

import (
	"go.bug.st/serial"
)

// RealFactory opens ports through the operating system serial driver.
type RealFactory struct{}

// Open opens a real serial port at the given path using the provided
// options.
func (RealFactory) Open(path string, opts Options) (Porter, error) {
	mode, err := opts.Mode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, err
	}

	return port, nil
}

// Enumerate returns the serial port paths known to the operating system.
func (RealFactory) Enumerate() []string {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil
	}
	return ports
}
