package jobs

import (
	"sync"
	"time"

	"website-cleaner/internal/domain"
)

// EventType classifies progress messages emitted during job execution.
type EventType string

const (
	EventTypeChunk     EventType = "chunk"
	EventTypeCompleted EventType = "completed"
	EventTypeFailed    EventType = "failed"
	EventTypeCancelled EventType = "cancelled"
)

// Event is a sequenced progress payload consumed by the presentation
// sink. Events are transient; the bus keeps a bounded history for
// incremental polling.
type Event struct {
	Seq           int64           `json:"seq"`
	Timestamp     time.Time       `json:"timestamp"`
	JobID         string          `json:"jobId"`
	Type          EventType       `json:"type"`
	State         domain.JobState `json:"state,omitempty"`
	RowsProcessed int             `json:"rowsProcessed,omitempty"`
	TotalRows     int             `json:"totalRows,omitempty"`
	RowsKept      int             `json:"rowsKept,omitempty"`
	RowErrors     int             `json:"rowErrors,omitempty"`
	OutputPath    string          `json:"outputPath,omitempty"`
	Message       string          `json:"message,omitempty"`
}

// Sink receives every published event, in publish order.
type Sink func(Event)

// EventBus stores recent events and provides incremental reads, with an
// optional push sink for live consumers.
type EventBus struct {
	mu        sync.RWMutex
	nextSeq   int64
	maxEvents int
	events    []Event
	sink      Sink
}

// NewEventBus creates a bounded in-memory event buffer.
func NewEventBus(maxEvents int) *EventBus {
	if maxEvents <= 0 {
		maxEvents = 1000
	}

	return &EventBus{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
	}
}

// SetSink registers the push consumer. Call before publishing begins.
func (b *EventBus) SetSink(sink Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sink = sink
}

// Publish appends one event, assigns sequence and timestamp, and
// forwards it to the sink outside the lock.
func (b *EventBus) Publish(event Event) Event {
	b.mu.Lock()

	b.nextSeq++
	event.Seq = b.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.events = append(b.events, event)
	if len(b.events) > b.maxEvents {
		trim := len(b.events) - b.maxEvents
		b.events = append([]Event(nil), b.events[trim:]...)
	}

	sink := b.sink
	b.mu.Unlock()

	if sink != nil {
		sink(event)
	}
	return event
}

// Since returns events with sequence strictly greater than seq.
func (b *EventBus) Since(seq int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.events) == 0 {
		return nil
	}

	out := make([]Event, 0, len(b.events))
	for _, event := range b.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}
