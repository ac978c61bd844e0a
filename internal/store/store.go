// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
)

// ErrNotFound is returned when a session does not exist. Callers also use it
// for sessions the requesting user does not own, so a probe cannot tell the
// two cases apart.
var ErrNotFound = errors.New("session not found")

// Repository defines the interface for persisting planning sessions.
type Repository interface {
	// GetSession retrieves a session by ID. Returns ErrNotFound if absent.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// UpsertSession creates or updates a session snapshot.
	UpsertSession(ctx context.Context, session *domain.Session) error

	// DeleteSession removes a session. Deleting an absent session is not an error.
	DeleteSession(ctx context.Context, sessionID string) error

	// ListExpiredSessions retrieves sessions not touched since the cutoff.
	ListExpiredSessions(ctx context.Context, cutoff time.Time) ([]*domain.Session, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
