package events

import (
	"testing"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/workflow"
)

func stateAt(stage domain.Stage) *workflow.State {
	return &workflow.State{CurrentStage: stage}
}

func TestBacklogAppendAssignsSequence(t *testing.T) {
	b := NewBacklog(4)

	first := b.Append(Event{Type: EventWorkflowState, SessionID: "sess-1", State: stateAt(domain.StageHousing)})
	second := b.Append(Event{Type: EventWorkflowState, SessionID: "sess-1", State: stateAt(domain.StageCapacity)})

	if first.Seq != 1 || second.Seq != 2 {
		t.Errorf("Expected sequences 1 and 2, got %d and %d", first.Seq, second.Seq)
	}
	if b.LastSeq() != 2 {
		t.Errorf("Expected last seq 2, got %d", b.LastSeq())
	}
	if b.Len() != 2 {
		t.Errorf("Expected 2 buffered events, got %d", b.Len())
	}
}

func TestBacklogEmpty(t *testing.T) {
	b := NewBacklog(4)

	if b.LastSeq() != 0 {
		t.Errorf("Expected last seq 0 for empty backlog, got %d", b.LastSeq())
	}
	if got := b.After(0); len(got) != 0 {
		t.Errorf("Expected no events from empty backlog, got %d", len(got))
	}
}

func TestBacklogAfterFiltersOlderEvents(t *testing.T) {
	b := NewBacklog(8)
	for i := 0; i < 5; i++ {
		b.Append(Event{Type: EventWorkflowState, SessionID: "sess-1"})
	}

	got := b.After(3)
	if len(got) != 2 {
		t.Fatalf("Expected 2 events after seq 3, got %d", len(got))
	}
	if got[0].Seq != 4 || got[1].Seq != 5 {
		t.Errorf("Expected sequences 4 and 5, got %d and %d", got[0].Seq, got[1].Seq)
	}
}

func TestBacklogOverwritesOldest(t *testing.T) {
	b := NewBacklog(4)
	for i := 0; i < 6; i++ {
		b.Append(Event{Type: EventWorkflowState, SessionID: "sess-1"})
	}

	if b.Len() != 4 {
		t.Fatalf("Expected ring to hold 4 events, got %d", b.Len())
	}

	got := b.After(0)
	if len(got) != 4 {
		t.Fatalf("Expected 4 replayable events, got %d", len(got))
	}
	for i, want := range []uint64{3, 4, 5, 6} {
		if got[i].Seq != want {
			t.Errorf("Expected seq %d at position %d, got %d", want, i, got[i].Seq)
		}
	}
}
