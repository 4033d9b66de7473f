package erase

import "errors"

// ErrSinkClosed is returned by a Sink whose consumer has gone away.
var ErrSinkClosed = errors.New("progress sink closed")

// EventType discriminates entries in the progress stream.
type EventType int

const (
	// EventUpdated carries an aggregate completion fraction in percent.
	EventUpdated EventType = iota
	// EventFinished is the terminal event, exactly one per job.
	EventFinished
)

// Event is a single progress notification for an erase job.
// Fraction is valid for EventUpdated, Success for EventFinished.
type Event struct {
	Type     EventType
	Fraction float64
	Success  bool
}

func Updated(fraction float64) Event {
	return Event{Type: EventUpdated, Fraction: fraction}
}

func Finished(success bool) Event {
	return Event{Type: EventFinished, Success: success}
}

// Sink receives progress events from the engine. Emit blocks when the
// consumer is slow and returns an error once the consumer is gone, so
// a broken stream aborts the job instead of being silently swallowed.
type Sink interface {
	Emit(Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event) error

func (f SinkFunc) Emit(e Event) error { return f(e) }
