package spectro

import "sync"

// Store holds the spectrum for the current acquisition: an append-only
// ordered collection of samples, cleared only by an explicit Clear. Every
// append recomputes the metrics in full, so readers always observe a
// metrics record consistent with the spectrum that produced it.
type Store struct {
	mu      sync.Mutex
	samples []Sample
	metrics Metrics
	bus     *Bus
}

// NewStore creates an empty store publishing to the given bus.
func NewStore(bus *Bus) *Store {
	return &Store{bus: bus}
}

// Append adds a sample to the end of the spectrum, recomputes the metrics,
// and publishes the sample-received event followed by the metrics-updated
// event. Both events go out while the store mutex is held (Publish never
// blocks), so no other mutation can slip its own event between the pair.
func (s *Store) Append(sample Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples = append(s.samples, sample)
	s.metrics = ComputeMetrics(s.samples)
	metrics := s.metrics

	s.bus.Publish(Event{Kind: EventSampleReceived, Sample: &sample})
	s.bus.Publish(Event{Kind: EventMetricsUpdated, Metrics: &metrics})
}

// Clear empties the spectrum, zeroes the metrics, and publishes the reset
// metrics.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples = nil
	s.metrics = Metrics{}
	s.bus.Publish(Event{Kind: EventMetricsUpdated, Metrics: &Metrics{}})
}

// Snapshot returns a copy of the spectrum in acquisition order. The caller
// cannot mutate the store through it.
func (s *Store) Snapshot() []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Metrics returns the metrics for the current spectrum.
func (s *Store) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// Len returns the number of accumulated samples.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples)
}
