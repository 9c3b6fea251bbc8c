package evloop

import (
	"time"

	"github.com/rsvim/rsvim-sub002/internal/msg"
)

// EventSource feeds input into the loop. Closing the channel ends the
// loop; Close releases whatever the source holds.
type EventSource interface {
	Events() <-chan msg.Event
	Close() error
}

// MockEventSource replays a scripted operation list for headless runs.
// A Sleep op pauses the feed first, which gives in-flight script work a
// window to settle, then still reaches the loop as a no-op event.
type MockEventSource struct {
	events chan msg.Event
	done   chan struct{}
}

func NewMockEventSource(ops []msg.MockOp) *MockEventSource {
	s := &MockEventSource{
		events: make(chan msg.Event),
		done:   make(chan struct{}),
	}
	go s.feed(ops)
	return s
}

func (s *MockEventSource) feed(ops []msg.MockOp) {
	defer close(s.events)
	for _, op := range ops {
		if op.Kind == msg.MockSleep && op.Sleep > 0 {
			select {
			case <-time.After(op.Sleep):
			case <-s.done:
				return
			}
		}
		select {
		case s.events <- msg.MockEvent{Op: op}:
		case <-s.done:
			return
		}
	}
}

func (s *MockEventSource) Events() <-chan msg.Event {
	return s.events
}

func (s *MockEventSource) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return nil
}
