package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEvent is one line in a session's NDJSON audit trail.
type AuditEvent struct {
	Timestamp time.Time `json:"ts"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Event     string    `json:"event"`
	Status    string    `json:"status,omitempty"`
	ErrorCode string    `json:"error_code,omitempty"`
}

// AuditLog appends session events to one NDJSON file per session under
// {dir}/{userID}/{sessionID}.ndjson. Writes go through a buffered channel and
// a background writer so logging never blocks a request; when the queue is
// full the event is dropped with a warning.
type AuditLog struct {
	dir    string
	events chan AuditEvent
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAuditLog creates the audit directory and starts the background writer.
func NewAuditLog(dir string, queueSize int) (*AuditLog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}
	if queueSize <= 0 {
		queueSize = 256
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &AuditLog{
		dir:    dir,
		events: make(chan AuditEvent, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}

	a.wg.Add(1)
	go a.process()

	return a, nil
}

// Log queues an event for writing. Never blocks; a full queue drops the event.
func (a *AuditLog) Log(event AuditEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case a.events <- event:
	case <-a.ctx.Done():
	default:
		slog.Warn("Audit queue full, dropping event",
			"session_id", event.SessionID,
			"event", event.Event)
	}
}

func (a *AuditLog) process() {
	defer a.wg.Done()

	for {
		select {
		case <-a.ctx.Done():
			// Flush whatever is still queued before exiting.
			for {
				select {
				case event := <-a.events:
					a.write(event)
				default:
					return
				}
			}
		case event := <-a.events:
			a.write(event)
		}
	}
}

func (a *AuditLog) write(event AuditEvent) {
	dir := filepath.Join(a.dir, event.UserID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Warn("Failed to create audit user directory", "dir", dir, "error", err)
		return
	}

	path := filepath.Join(dir, event.SessionID+".ndjson")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		slog.Warn("Failed to open audit file", "path", path, "error", err)
		return
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close audit file", "path", path, "error", closeErr)
		}
	}()

	line, err := json.Marshal(event)
	if err != nil {
		slog.Warn("Failed to encode audit event", "error", err)
		return
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		slog.Warn("Failed to write audit event", "path", path, "error", err)
	}
}

// Close stops the writer after flushing queued events.
func (a *AuditLog) Close() error {
	a.cancel()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		slog.Warn("Audit writer shutdown timeout")
	}
	return nil
}
