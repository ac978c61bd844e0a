package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/identity"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/planner"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/store"
)

const writeTimeout = 5 * time.Second

// Handler upgrades session event requests to WebSocket and streams workflow
// state updates. The stream is push-only: a fresh snapshot on connect, then
// one event per session mutation until the client or the session goes away.
type Handler struct {
	svc            *planner.Service
	hub            *Hub
	allowedOrigins []string
	isDev          bool
}

// NewHandler creates the event stream handler.
func NewHandler(svc *planner.Service, hub *Hub, allowedOrigins []string, isDev bool) *Handler {
	return &Handler{
		svc:            svc,
		hub:            hub,
		allowedOrigins: allowedOrigins,
		isDev:          isDev,
	}
}

// ServeHTTP implements http.Handler for WebSocket upgrade on
// GET /api/sessions/{sessionID}/events. The optional ?after=<seq> query
// replays buffered events newer than seq before live delivery.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	// Ownership check before the upgrade; it also yields the connect snapshot.
	state, err := h.svc.State(r.Context(), userID, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, `{"error": "session not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Failed to load session state for event stream", "session_id", sessionID, "error", err)
		http.Error(w, `{"error": "failed to load session"}`, http.StatusInternalServerError)
		return
	}

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "session_id", sessionID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "stream ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "session_id", sessionID)
		}
	}()

	// Push-only stream: CloseRead handles control frames and cancels the
	// context when the client goes away.
	ctx := ws.CloseRead(r.Context())

	afterSeq := h.hub.LastSeq(sessionID)
	if raw := r.URL.Query().Get("after"); raw != "" {
		if parsed, parseErr := strconv.ParseUint(raw, 10, 64); parseErr == nil {
			afterSeq = parsed
		}
	}

	sub := h.hub.Subscribe(sessionID, afterSeq)
	defer h.hub.Unsubscribe(sessionID, sub)

	snapshot := Event{
		Seq:       h.hub.LastSeq(sessionID),
		Type:      EventWorkflowState,
		SessionID: sessionID,
		State:     &state,
	}
	if err := writeEvent(ctx, ws, snapshot); err != nil {
		slog.Debug("Failed to send connect snapshot", "session_id", sessionID, "error", err)
		return
	}

	slog.Info("Event stream opened", "session_id", sessionID, "user_id", userID)
	h.pump(ctx, ws, sub, sessionID)
	slog.Info("Event stream ended", "session_id", sessionID)
}

// pump forwards events to the connection until the client disconnects or the
// hub drops the subscription.
func (h *Handler) pump(ctx context.Context, ws *websocket.Conn, sub *Subscription, sessionID string) {
	for {
		select {
		case evt := <-sub.Events():
			if err := writeEvent(ctx, ws, evt); err != nil {
				slog.Debug("Event write failed", "session_id", sessionID, "error", err)
				return
			}
		case <-sub.Done():
			// Deliver whatever is still buffered, then stop.
			for {
				select {
				case evt := <-sub.Events():
					if err := writeEvent(ctx, ws, evt); err != nil {
						return
					}
				default:
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	slog.Warn("WebSocket origin rejected", "origin", origin)
	return false
}

func writeEvent(ctx context.Context, ws *websocket.Conn, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return ws.Write(writeCtx, websocket.MessageText, data)
}

var _ planner.Notifier = (*Hub)(nil)
