package progress

import (
	"errors"
	"testing"
)

func drain(s *Stream) []Event {
	var out []Event
	for e := range s.Events() {
		out = append(out, e)
	}
	return out
}

func TestSinkOrderingAndTerminal(t *testing.T) {
	stream := NewStream(16)
	sink := stream.Sink("op-1")

	sink.Emit(Event{Phase: PhaseExtracting, Current: 10, Bytes: 100})
	sink.Emit(Event{Phase: PhaseExtracting, Current: 5, Bytes: 50}) // regresses, clamped
	sink.Done()

	events := drain(stream)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for _, e := range events {
		if e.OpID != "op-1" {
			t.Fatalf("event missing op id: %+v", e)
		}
	}
	if events[1].Current != 10 || events[1].Bytes != 100 {
		t.Fatalf("regressing event not clamped: %+v", events[1])
	}
	last := events[len(events)-1]
	if !last.Terminal() || last.State != StateDone {
		t.Fatalf("last event should be the done terminal, got %+v", last)
	}
}

func TestSinkTerminalIsIdempotent(t *testing.T) {
	stream := NewStream(4)
	sink := stream.Sink("op-2")

	sink.Cancel()
	// Late arrivals after the terminal event must be discarded, not panic
	// on the closed channel.
	sink.Cancel()
	sink.Fail(errors.New("late"))
	sink.Emit(Event{Current: 99})

	events := drain(stream)
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 event after terminal, got %d", len(events))
	}
	if events[0].State != StateCancelled {
		t.Fatalf("first terminal should win, got %v", events[0].State)
	}
	if sink.LastState() != StateCancelled {
		t.Fatalf("LastState = %v, want cancelled", sink.LastState())
	}
}

func TestSinkDropsInsteadOfBlocking(t *testing.T) {
	stream := NewStream(1)
	sink := stream.Sink("op-3")

	// No consumer: the buffer holds one event, the rest are dropped.
	for i := 0; i < 100; i++ {
		sink.Emit(Event{Current: i})
	}
	go sink.Done()

	events := drain(stream)
	if len(events) != 2 {
		t.Fatalf("expected buffered event plus terminal, got %d", len(events))
	}
	if !events[len(events)-1].Terminal() {
		t.Fatalf("terminal event must be delivered")
	}
	if events[len(events)-1].Current != 99 {
		t.Fatalf("terminal should carry the latest progress, got %d", events[len(events)-1].Current)
	}
}

func TestNilSinkIsSafe(t *testing.T) {
	var sink *Sink
	sink.Emit(Event{Current: 1})
	sink.Done()
	sink.Cancel()
	if sink.LastState() != StateRunning {
		t.Fatalf("nil sink LastState should report running")
	}
}
