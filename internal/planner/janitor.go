package planner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/store"
)

const janitorInterval = 5 * time.Minute

// StartJanitor runs a background goroutine that periodically archives
// sessions idle past the TTL.
func StartJanitor(ctx context.Context, svc *Service, ttl time.Duration) {
	ticker := time.NewTicker(janitorInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session janitor started", "interval", janitorInterval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				svc.sweepExpired(ctx, ttl)
			case <-ctx.Done():
				slog.Info("Session janitor shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func (s *Service) sweepExpired(ctx context.Context, ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)
	expired, err := s.repo.ListExpiredSessions(ctx, cutoff)
	if err != nil {
		slog.Error("Janitor failed to list expired sessions", "error", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	slog.Info("Janitor found idle sessions", "count", len(expired))

	archived := 0
	for _, sess := range expired {
		if err := s.expireSession(ctx, sess.ID, ttl); err != nil {
			slog.Warn("Janitor failed to archive session", "session_id", sess.ID, "error", err)
			continue
		}
		archived++
	}

	slog.Info("Janitor sweep completed", "archived", archived)
}

// expireSession re-checks idleness under the session lock; activity between
// the listing and the lock wins.
func (s *Service) expireSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	unlock := s.lockSession(sessionID)
	defer unlock()

	sess, err := s.repo.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !sess.IdleExpired(time.Now(), ttl) {
		return nil
	}
	return s.remove(ctx, sess, "session_expired")
}
