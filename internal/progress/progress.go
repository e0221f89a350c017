// Package progress models extraction and copy progress as an ordered event
// stream. Events for one operation are delivered in non-decreasing
// Current/Bytes order and nothing follows the operation's terminal event.
package progress

import "sync"

// Phase names the pipeline step an event was emitted from.
type Phase string

const (
	PhaseScanning   Phase = "scanning"
	PhaseExtracting Phase = "extracting"
	PhaseCopying    Phase = "copying"
	PhaseValidating Phase = "validating"
)

// State marks whether an event is an intermediate update or the operation's
// terminal event.
type State string

const (
	StateRunning   State = "running"
	StateDone      State = "done"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Event is one progress update. Total is -1 when the container cannot report
// an entry count up front.
type Event struct {
	OpID        string
	Phase       Phase
	State       State
	Current     int
	Total       int
	CurrentFile string
	Bytes       int64
	Err         error
}

// Terminal reports whether e ends its operation.
func (e Event) Terminal() bool {
	return e.State != StateRunning
}

// Stream carries events from a worker to one consumer. Intermediate events
// are dropped rather than blocking the worker when the consumer falls
// behind; terminal events are always delivered.
type Stream struct {
	ch chan Event
}

// NewStream returns a stream with the given buffer depth.
func NewStream(buffer int) *Stream {
	if buffer < 1 {
		buffer = 16
	}
	return &Stream{ch: make(chan Event, buffer)}
}

// Events returns the receive side. The channel is closed after the terminal
// event of the last sink attached to the stream.
func (s *Stream) Events() <-chan Event {
	return s.ch
}

// Sink publishes events for a single operation id. It enforces the ordering
// guarantees: Current and Bytes never go backwards, and nothing is emitted
// after the terminal event. Terminal transitions are idempotent, so
// cancelling an already-finished operation is a no-op.
type Sink struct {
	stream *Stream
	opID   string

	mu       sync.Mutex
	last     Event
	finished bool
}

// Sink creates a publisher for one operation.
func (s *Stream) Sink(opID string) *Sink {
	return &Sink{stream: s, opID: opID}
}

// Emit publishes an intermediate event. Values regressing below the previous
// event are clamped; events after the terminal one are discarded.
func (k *Sink) Emit(e Event) {
	if k == nil {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.finished {
		return
	}
	e.OpID = k.opID
	e.State = StateRunning
	if e.Current < k.last.Current {
		e.Current = k.last.Current
	}
	if e.Bytes < k.last.Bytes {
		e.Bytes = k.last.Bytes
	}
	k.last = e

	// Progress is advisory: drop instead of blocking the worker.
	select {
	case k.stream.ch <- e:
	default:
	}
}

// Done publishes the success terminal event and closes the stream.
func (k *Sink) Done() {
	k.finish(StateDone, nil)
}

// Fail publishes the failure terminal event and closes the stream.
func (k *Sink) Fail(err error) {
	k.finish(StateFailed, err)
}

// Cancel publishes the cancellation terminal event and closes the stream.
// Calling it again, or after Done/Fail, is a no-op.
func (k *Sink) Cancel() {
	k.finish(StateCancelled, nil)
}

// LastState returns the terminal state if the operation has finished, or
// StateRunning otherwise.
func (k *Sink) LastState() State {
	if k == nil {
		return StateRunning
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.finished {
		return StateRunning
	}
	return k.last.State
}

func (k *Sink) finish(state State, err error) {
	if k == nil {
		return
	}
	k.mu.Lock()
	if k.finished {
		k.mu.Unlock()
		return
	}
	k.finished = true
	e := k.last
	e.OpID = k.opID
	e.State = state
	e.Err = err
	k.last = e
	k.mu.Unlock()

	// Terminal events must reach the consumer.
	k.stream.ch <- e
	close(k.stream.ch)
}
