package serialport

import (
	"fmt"
	"strings"

	"go.bug.st/serial"
)

// AcceptedBaudRates are the symbol rates the spectrometer firmware accepts.
var AcceptedBaudRates = []int{9600, 19200, 38400, 115200}

// DefaultBaudRate is used when no baud rate is configured.
const DefaultBaudRate = 9600

// Options describes the serial connection parameters used when opening a
// port. The fields intentionally mirror the database configuration used by
// the API layer so that presets can be passed through without translation.
type Options struct {
	BaudRate int    `json:"baud_rate"`
	DataBits int    `json:"data_bits"`
	StopBits int    `json:"stop_bits"`
	Parity   string `json:"parity"`
}

// ValidBaudRate reports whether baud is in the accepted set.
func ValidBaudRate(baud int) bool {
	for _, b := range AcceptedBaudRates {
		if baud == b {
			return true
		}
	}
	return false
}

// Normalize validates the options and applies defaults for any unset values.
func (o Options) Normalize() (Options, error) {
	opts := o

	if opts.BaudRate == 0 {
		opts.BaudRate = DefaultBaudRate
	}
	if !ValidBaudRate(opts.BaudRate) {
		return opts, fmt.Errorf("unsupported baud rate %d: accepted rates are %v", opts.BaudRate, AcceptedBaudRates)
	}

	if opts.DataBits == 0 {
		opts.DataBits = 8
	}
	if opts.DataBits < 5 || opts.DataBits > 8 {
		return opts, fmt.Errorf("invalid data bits %d: must be between 5 and 8", opts.DataBits)
	}

	if opts.StopBits == 0 {
		opts.StopBits = 1
	}
	if opts.StopBits != 1 && opts.StopBits != 2 {
		return opts, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", opts.StopBits)
	}

	parity := strings.TrimSpace(strings.ToUpper(opts.Parity))
	if parity == "" {
		parity = "N"
	}

	switch parity {
	case "N", "NONE":
		parity = "N"
	case "E", "EVEN":
		parity = "E"
	case "O", "ODD":
		parity = "O"
	default:
		return opts, fmt.Errorf("unsupported parity %q: expected N, E, or O", opts.Parity)
	}

	opts.Parity = parity
	return opts, nil
}

// Mode converts the options into the serial.Mode structure required by
// go.bug.st/serial when opening a port.
func (o Options) Mode() (*serial.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}

	mode := &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
	}

	// serial.StopBits is not the bit count: OneStopBit is 0 and
	// OnePointFiveStopBits is 1, so a raw cast would ask for 1.5 stop
	// bits on the default configuration.
	switch opts.StopBits {
	case 1:
		mode.StopBits = serial.OneStopBit
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", opts.StopBits)
	}

	switch opts.Parity {
	case "N":
		mode.Parity = serial.NoParity
	case "E":
		mode.Parity = serial.EvenParity
	case "O":
		mode.Parity = serial.OddParity
	default:
		return nil, fmt.Errorf("unsupported parity %q", opts.Parity)
	}

	return mode, nil
}
