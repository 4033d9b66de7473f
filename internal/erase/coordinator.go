package erase

import (
	"sync"

	"github.com/google/uuid"

	"fileeraser/internal/config"
	"fileeraser/internal/logging"
)

// Coordinator runs erase jobs on a background goroutine and hands the
// caller a Stream of progress events. At most one job runs at a time;
// starting a second one while the first is running is a silent no-op.
type Coordinator struct {
	engine   *Engine
	logger   *logging.Logger
	passes   int
	queueCap int

	mu      sync.Mutex
	running bool
	current *Stream
}

func NewCoordinator(engine *Engine, cfg *config.Config, logger *logging.Logger) *Coordinator {
	return &Coordinator{
		engine:   engine,
		logger:   logger,
		passes:   cfg.Erase.Passes,
		queueCap: cfg.Erase.QueueCapacity,
	}
}

// Start launches an erase job for path. It returns the consumer side
// of the event queue and true, or nil and false when a job is already
// running (the existing Stream, if any, stays valid).
//
// The background goroutine owns the engine call and the producer side
// of the queue, and always terminates the stream with exactly one
// Finished event, even on failure, so the consumer never waits
// indefinitely.
func (c *Coordinator) Start(path string) (*Stream, bool) {
	stream := &Stream{
		events: make(chan Event, c.queueCap),
		done:   make(chan struct{}),
		coord:  c,
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		c.logger.Log("WARN", "Erase already in progress, ignoring request", "path", path)
		return nil, false
	}
	c.running = true
	c.current = stream
	c.mu.Unlock()

	jobID := uuid.NewString()
	c.logger.Log("INFO", "Erase job started", "job", jobID, "path", path, "passes", c.passes)

	go func() {
		err := c.engine.Overwrite(path, c.passes, stream.sink())
		success := err == nil
		if err != nil {
			c.logger.Log("ERROR", "Erase job failed", "job", jobID, "path", path, "error", err.Error())
		}

		if !stream.deliver(Finished(success)) {
			// Consumer is gone; nobody will observe the terminal
			// event, so release the job slot here.
			c.finish(stream)
		}
	}()

	return stream, true
}

// Running reports whether a job currently occupies the single slot.
func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// finish releases the job slot, but only on behalf of the stream that
// holds it: a stale handle from an earlier job must not free the slot
// out from under the job currently running.
func (c *Coordinator) finish(s *Stream) {
	c.mu.Lock()
	if c.current == s {
		c.running = false
		c.current = nil
	}
	c.mu.Unlock()
}

// Stream is the consumer handle for a single job: a finite, pull-style
// sequence of events ending at Finished. It is not restartable; every
// job gets a fresh Stream.
type Stream struct {
	events    chan Event
	done      chan struct{}
	coord     *Coordinator
	closeOnce sync.Once
	terminal  bool
}

// Next blocks until the next event is available. It returns false once
// the stream is exhausted (after Finished was delivered) or closed.
// Observing Finished releases the coordinator's job slot.
func (s *Stream) Next() (Event, bool) {
	if s.terminal {
		return Event{}, false
	}

	select {
	case e := <-s.events:
		if e.Type == EventFinished {
			s.terminal = true
			s.coord.finish(s)
		}
		return e, true
	case <-s.done:
		return Event{}, false
	}
}

// Close abandons the stream. The engine sees ErrSinkClosed at its next
// emission and aborts; the file may be left partially overwritten.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.coord.finish(s)
	})
}

// sink is the producer half handed to the engine. Sends block when the
// queue is full, which backpressures the writer instead of growing
// memory unboundedly.
func (s *Stream) sink() Sink {
	return SinkFunc(func(e Event) error {
		select {
		case s.events <- e:
			return nil
		case <-s.done:
			return ErrSinkClosed
		}
	})
}

// deliver sends the terminal event, reporting false when the consumer
// has already disconnected.
func (s *Stream) deliver(e Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.events <- e:
		return true
	case <-s.done:
		return false
	}
}
