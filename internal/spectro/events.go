package spectro

import (
	crand "crypto/rand"
	"encoding/hex"
	"sync"
)

// EventKind discriminates the notifications published by the acquisition
// core.
type EventKind string

const (
	EventConnectionChanged EventKind = "connection_changed"
	EventLinkError         EventKind = "link_error"
	EventSampleReceived    EventKind = "sample_received"
	EventMetricsUpdated    EventKind = "metrics_updated"
)

// Event is one notification from the acquisition core to its consumers.
// Kind selects which of the payload fields are meaningful.
type Event struct {
	Kind      EventKind `json:"kind"`
	Connected bool      `json:"connected,omitempty"`
	Port      string    `json:"port,omitempty"`
	Baud      int       `json:"baud,omitempty"`
	Message   string    `json:"message,omitempty"`
	Sample    *Sample   `json:"sample,omitempty"`
	Metrics   *Metrics  `json:"metrics,omitempty"`
}

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls further behind than this loses events rather than stalling the
// acquisition loop.
const subscriberBuffer = 64

// Bus fans events out to subscribers over per-subscriber channels. For any
// one sample, the sample-received event is always published before the
// metrics-updated event that reflects it.
type Bus struct {
	mu          sync.Mutex
	subscribers map[string]chan Event
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string]chan Event),
	}
}

// randomID generates a random subscriber ID (8 byte random hex encoded value)
func randomID() string {
	b := make([]byte, 8)
	crand.Read(b)
	return hex.EncodeToString(b)
}

// Subscribe creates a new channel for receiving events. The returned ID
// identifies the channel when unsubscribing.
func (b *Bus) Subscribe() (string, <-chan Event) {
	id := randomID()
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
}

// Publish delivers ev to every subscriber. Delivery is non-blocking: a
// subscriber whose buffer is full misses the event.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
