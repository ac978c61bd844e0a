// Package events streams workflow state updates to WebSocket clients. The
// hub fans each session's updates out to its subscribers and keeps a short
// per-session backlog so reconnecting clients can catch up on missed events.
package events

import (
	"log/slog"
	"sync"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/workflow"
)

// subscriberBuffer must exceed the backlog size so replay never blocks.
const subscriberBuffer = 64

// Subscription is one client's view of a session stream. Events delivers
// replayed and live events; Done is closed when the hub drops the client.
type Subscription struct {
	events chan Event
	done   chan struct{}
}

// Events returns the channel live and replayed events arrive on.
func (s *Subscription) Events() <-chan Event { return s.events }

// Done is closed when the session ends or the subscription is cancelled.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Hub routes session events to active subscriptions. It implements the
// planner's Notifier contract: deliveries never block a session mutation.
// A subscriber that cannot keep up loses events and resynchronizes from the
// sequence numbers.
type Hub struct {
	mu       sync.RWMutex
	subs     map[string]map[*Subscription]struct{}
	backlogs map[string]*Backlog
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs:     make(map[string]map[*Subscription]struct{}),
		backlogs: make(map[string]*Backlog),
	}
}

// Subscribe registers a new subscription for a session, preloading it with
// the buffered events newer than afterSeq.
func (h *Hub) Subscribe(sessionID string, afterSeq uint64) *Subscription {
	sub := &Subscription{
		events: make(chan Event, subscriberBuffer),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if backlog, ok := h.backlogs[sessionID]; ok {
		for _, evt := range backlog.After(afterSeq) {
			sub.events <- evt
		}
	}

	if _, ok := h.subs[sessionID]; !ok {
		h.subs[sessionID] = make(map[*Subscription]struct{})
	}
	h.subs[sessionID][sub] = struct{}{}
	slog.Info("Event subscriber registered", "session_id", sessionID, "after_seq", afterSeq)
	return sub
}

// Unsubscribe removes a subscription. Safe to call after the hub has already
// dropped it.
func (h *Hub) Unsubscribe(sessionID string, sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(sessionID, sub)
}

// drop removes a subscription and closes its done channel. Caller holds the
// write lock.
func (h *Hub) drop(sessionID string, sub *Subscription) {
	subs, ok := h.subs[sessionID]
	if !ok {
		return
	}
	if _, exists := subs[sub]; !exists {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.subs, sessionID)
	}
	close(sub.done)
}

// LastSeq returns the newest buffered sequence number for a session, or 0
// when no events have been published yet.
func (h *Hub) LastSeq(sessionID string) uint64 {
	h.mu.RLock()
	backlog, ok := h.backlogs[sessionID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	return backlog.LastSeq()
}

// SessionUpdated buffers the new workflow state and pushes it to every
// subscriber. A full subscriber channel drops the event rather than stalling
// the planner.
func (h *Hub) SessionUpdated(sessionID string, state workflow.State) {
	h.mu.Lock()
	defer h.mu.Unlock()

	backlog, ok := h.backlogs[sessionID]
	if !ok {
		backlog = NewBacklog(0)
		h.backlogs[sessionID] = backlog
	}
	evt := backlog.Append(Event{
		Type:      EventWorkflowState,
		SessionID: sessionID,
		State:     &state,
	})

	for sub := range h.subs[sessionID] {
		select {
		case sub.events <- evt:
		default:
			slog.Warn("Event subscriber lagging, dropping update", "session_id", sessionID, "seq", evt.Seq)
		}
	}
}

// SessionClosed tells subscribers the session is gone and drops them along
// with the session's backlog.
func (h *Hub) SessionClosed(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.backlogs, sessionID)

	subs := h.subs[sessionID]
	if len(subs) == 0 {
		delete(h.subs, sessionID)
		return
	}

	evt := Event{Type: EventSessionClosed, SessionID: sessionID}
	for sub := range subs {
		select {
		case sub.events <- evt:
		default:
		}
		close(sub.done)
	}
	delete(h.subs, sessionID)
	slog.Info("Event stream closed", "session_id", sessionID, "subscribers", len(subs))
}
