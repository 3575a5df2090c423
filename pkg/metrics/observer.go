package metrics

import "time"

// Event names emitted by the dispatch path.
const (
	EventDispatch  = "dispatch"
	EventKeyRotate = "key_rotate"
	EventExhausted = "retries_exhausted"
	EventGateway   = "gateway_message"
)

// Common tag keys.
const (
	TagToolkit   = "toolkit"
	TagOperation = "operation"
	TagOutcome   = "outcome"
	TagService   = "service"
	TagRequestID = "request_id"
)

// Outcome tag values for dispatch events.
const (
	OutcomeOK        = "ok"
	OutcomeUsage     = "usage"
	OutcomeSoftError = "soft_error"
	OutcomeExhausted = "exhausted"
	OutcomeError     = "error"
)

type MetricsEvent struct {
	Name   string
	Time   time.Time
	Value  float64
	Tags   map[string]string
	Fields map[string]any
}

type Observer interface {
	RecordEvent(ev MetricsEvent)
}

type Flusher interface {
	Flush() error
}

type NoopObserver struct{}

func (NoopObserver) RecordEvent(MetricsEvent) {}

// MultiObserver fans one event out to every registered observer.
type MultiObserver struct {
	list []Observer
}

func NewMultiObserver(list ...Observer) *MultiObserver {
	return &MultiObserver{list: list}
}

func (m *MultiObserver) RecordEvent(ev MetricsEvent) {
	for _, obs := range m.list {
		if obs != nil {
			obs.RecordEvent(ev)
		}
	}
}
