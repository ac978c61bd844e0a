package events

import (
	"sync"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/workflow"
)

// Event types pushed to subscribers.
const (
	EventWorkflowState = "workflow_state"
	EventSessionClosed = "session_closed"
)

// Event is one message on a session's stream. Seq increases by one per event
// within a session, so clients can resume with ?after=<seq> and detect gaps.
type Event struct {
	Seq       uint64          `json:"seq"`
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	State     *workflow.State `json:"state,omitempty"`
}

// Backlog is a fixed-size ring of the most recent events for one session.
// When full, a new event overwrites the oldest. Prevents unbounded memory
// growth on long-lived sessions while still letting a reconnecting client
// catch up on recent updates.
type Backlog struct {
	mu     sync.Mutex
	events []Event
	size   int
	head   int // next write position
	full   bool
	seq    uint64
}

// NewBacklog creates a backlog holding up to size events.
// Default size is 32 which covers a full planning flow with revisions.
func NewBacklog(size int) *Backlog {
	if size <= 0 {
		size = 32
	}
	return &Backlog{
		events: make([]Event, size),
		size:   size,
	}
}

// Append stamps the event with the next sequence number and stores it,
// overwriting the oldest entry when the ring is full. Returns the stamped
// event.
func (b *Backlog) Append(evt Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	evt.Seq = b.seq

	b.events[b.head] = evt
	b.head = (b.head + 1) % b.size
	if b.head == 0 {
		b.full = true
	}
	return evt
}

// After returns the buffered events with a sequence number greater than seq,
// oldest first. Returns data in correct order even if the ring has wrapped.
func (b *Backlog) After(seq uint64) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	var ordered []Event
	if b.full {
		ordered = append(ordered, b.events[b.head:]...)
		ordered = append(ordered, b.events[:b.head]...)
	} else {
		ordered = append(ordered, b.events[:b.head]...)
	}

	var out []Event
	for _, evt := range ordered {
		if evt.Seq > seq {
			out = append(out, evt)
		}
	}
	return out
}

// LastSeq returns the sequence number of the newest event, or 0 when nothing
// has been appended yet.
func (b *Backlog) LastSeq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

// Len returns the number of buffered events.
func (b *Backlog) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.full {
		return b.size
	}
	return b.head
}
