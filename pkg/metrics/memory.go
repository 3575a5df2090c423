package metrics

import "sync"

// MemoryObserver keeps events in memory. Used by tests and the
// quickstart example, not meant for long-running processes.
type MemoryObserver struct {
	mu     sync.Mutex
	events []MetricsEvent
}

func NewMemoryObserver() *MemoryObserver {
	return &MemoryObserver{}
}

func (m *MemoryObserver) RecordEvent(ev MetricsEvent) {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
}

// Snapshot returns a copy of the recorded events.
func (m *MemoryObserver) Snapshot() []MetricsEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MetricsEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Reset drops all recorded events.
func (m *MemoryObserver) Reset() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}
