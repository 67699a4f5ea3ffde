package spectro

import (
	"errors"
	"sync"
	"time"

	"github.com/banshee-data/spectrum.report/internal/monitoring"
	"github.com/banshee-data/spectrum.report/internal/serialport"
	"github.com/banshee-data/spectrum.report/internal/timeutil"
)

// PollInterval is how often the poll loop drains the port while scanning.
const PollInterval = 100 * time.Millisecond

// Command frames understood by the spectrometer firmware.
var (
	startFrame = []byte("d#101#1002\n")
	stopFrame  = []byte("STOP\n")
)

// ErrNotConnected is returned by StartScan when no serial connection is
// available.
var ErrNotConnected = errors.New("no serial connection available")

// LinkPhase is the scan lifecycle phase of the serial link.
type LinkPhase int

const (
	Disconnected LinkPhase = iota
	Connected
	Scanning
)

func (p LinkPhase) String() string {
	switch p {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case Scanning:
		return "scanning"
	default:
		return "unknown"
	}
}

// LinkState is the current phase plus the port parameters it holds for.
// Port and Baud are meaningful only outside the Disconnected phase.
type LinkState struct {
	Phase LinkPhase `json:"-"`
	Port  string    `json:"port,omitempty"`
	Baud  int       `json:"baud,omitempty"`
}

// Controller is the scan lifecycle state machine. It owns the transport
// exclusively: the port is touched only from the Connect, Disconnect,
// StartScan and StopScan command handlers and from the poll tick, all of
// which serialise on one mutex. An in-flight tick therefore always
// completes before a state change applies to it.
type Controller struct {
	transport *serialport.Transport
	store     *Store
	bus       *Bus
	clock     timeutil.Clock
	interval  time.Duration

	mu        sync.Mutex
	state     LinkState
	stopPoll  chan struct{}
	decoder   Decoder
	malformed int
}

// NewController creates a controller in the Disconnected phase. A nil
// clock selects the real one.
func NewController(transport *serialport.Transport, store *Store, bus *Bus, clock timeutil.Clock) *Controller {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Controller{
		transport: transport,
		store:     store,
		bus:       bus,
		clock:     clock,
		interval:  PollInterval,
	}
}

// State returns the current link state.
func (c *Controller) State() LinkState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// MalformedLines returns how many protocol lines have been dropped since
// startup.
func (c *Controller) MalformedLines() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.malformed
}

// Ports lists candidate serial port paths.
func (c *Controller) Ports() []string {
	return c.transport.Enumerate()
}

// Connect opens the given port, disconnecting first if a port is already
// open. On failure the controller stays Disconnected and publishes a link
// error.
func (c *Controller) Connect(port string, baud int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase == Scanning {
		c.stopScanLocked()
	}

	opts := serialport.Options{BaudRate: baud}
	if err := c.transport.Open(port, opts); err != nil {
		c.state = LinkState{}
		c.bus.Publish(Event{Kind: EventLinkError, Message: err.Error()})
		c.bus.Publish(Event{Kind: EventConnectionChanged, Connected: false})
		return err
	}

	c.state = LinkState{Phase: Connected, Port: port, Baud: baud}
	c.bus.Publish(Event{Kind: EventConnectionChanged, Connected: true, Port: port, Baud: baud})
	return nil
}

// Disconnect stops any running scan and closes the port. The stop command
// frame always goes out before the port closes; that ordering is what
// keeps the firmware from streaming into a dead channel. Disconnecting
// while already disconnected is a no-op.
func (c *Controller) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase == Disconnected {
		return nil
	}
	if c.state.Phase == Scanning {
		c.stopScanLocked()
	}

	err := c.transport.Close()
	c.state = LinkState{}
	c.bus.Publish(Event{Kind: EventConnectionChanged, Connected: false})
	return err
}

// StartScan issues the start command frame and begins polling the port at
// the poll interval. It fails with ErrNotConnected when no port is open
// and is a no-op when a scan is already running.
func (c *Controller) StartScan() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.Phase {
	case Disconnected:
		c.bus.Publish(Event{Kind: EventLinkError, Message: ErrNotConnected.Error()})
		return ErrNotConnected
	case Scanning:
		return nil
	}

	if err := c.transport.Write(startFrame); err != nil {
		c.bus.Publish(Event{Kind: EventLinkError, Message: "failed to start scan: " + err.Error()})
		return err
	}

	c.decoder.Reset()
	c.state.Phase = Scanning
	stop := make(chan struct{})
	c.stopPoll = stop
	go c.poll(stop)
	return nil
}

// StopScan halts polling and issues the stop command frame. Stopping when
// no scan is running is a no-op.
func (c *Controller) StopScan() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopScanLocked()
}

// stopScanLocked transitions Scanning back to Connected. The stop frame
// write is best-effort: a failure is reported but never blocks the
// transition.
func (c *Controller) stopScanLocked() {
	if c.state.Phase != Scanning {
		return
	}

	if err := c.transport.Write(stopFrame); err != nil {
		c.bus.Publish(Event{Kind: EventLinkError, Message: "error stopping scan: " + err.Error()})
	}

	close(c.stopPoll)
	c.stopPoll = nil
	c.state.Phase = Connected
}

// poll runs until stop closes, draining the port once per tick.
func (c *Controller) poll(stop chan struct{}) {
	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			c.tick()
		}
	}
}

// tick drains the port, decodes, and forwards samples to the store. A read
// failure stops the scan before the error is reported so polling never
// continues against a broken channel.
func (c *Controller) tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// a tick that lost the race with StopScan or Disconnect does nothing
	if c.state.Phase != Scanning {
		return
	}

	if !c.transport.Connected() {
		c.stopScanLocked()
		c.bus.Publish(Event{Kind: EventLinkError, Message: "serial port lost during scan"})
		return
	}

	data, err := c.transport.ReadAvailable()
	if err != nil {
		c.stopScanLocked()
		c.bus.Publish(Event{Kind: EventLinkError, Message: "error reading serial data: " + err.Error()})
		return
	}
	if len(data) == 0 {
		return
	}

	for _, r := range c.decoder.Feed(data) {
		if r.Err != nil {
			c.malformed++
			monitoring.Logf("dropping %v", r.Err)
			continue
		}
		c.store.Append(r.Sample)
	}
}
