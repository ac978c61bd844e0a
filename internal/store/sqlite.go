package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/pricecache"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite. It also implements
// pricecache.Store so the same database can back the price cache.
type SQLiteStore struct {
	db      *sql.DB
	writeMu sync.Mutex // Serializes session writes to prevent SQLITE_BUSY
}

var (
	_ Repository       = (*SQLiteStore)(nil)
	_ pricecache.Store = (*SQLiteStore)(nil)
)

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);

	CREATE TABLE IF NOT EXISTS price_cache (
		cache_key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		written_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `SELECT payload FROM sessions WHERE session_id = ?`
	row := s.db.QueryRowContext(ctx, query, sessionID)

	var payload string
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &session, nil
}

// UpsertSession creates or updates a session snapshot. The full session is
// stored as JSON; created_at and updated_at are mirrored into columns so the
// expiry sweep can query without decoding payloads.
func (s *SQLiteStore) UpsertSession(ctx context.Context, session *domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}

	query := `
	INSERT INTO sessions (session_id, user_id, payload, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		payload = excluded.payload,
		updated_at = excluded.updated_at`

	return shared.RetrySQLite(ctx, "upsert session", func() error {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		_, err := s.db.ExecContext(ctx, query,
			session.ID, session.UserID, string(payload),
			session.CreatedAt.Unix(), session.UpdatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("upsert session: %w", err)
		}
		return nil
	})
}

// DeleteSession removes a session.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	return shared.RetrySQLite(ctx, "delete session", func() error {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
}

// ListExpiredSessions retrieves sessions not touched since the cutoff.
func (s *SQLiteStore) ListExpiredSessions(ctx context.Context, cutoff time.Time) ([]*domain.Session, error) {
	query := `SELECT payload FROM sessions WHERE updated_at < ?`
	rows, err := s.db.QueryContext(ctx, query, cutoff.Unix())
	if err != nil {
		return nil, fmt.Errorf("query expired sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close expired sessions rows", "error", closeErr)
		}
	}()

	var sessions []*domain.Session
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan expired session row: %w", err)
		}
		var session domain.Session
		if err := json.Unmarshal([]byte(payload), &session); err != nil {
			slog.Warn("Skipping undecodable session payload", "error", err)
			continue
		}
		sessions = append(sessions, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired sessions: %w", err)
	}

	return sessions, nil
}

// Get implements pricecache.Store.
func (s *SQLiteStore) Get(ctx context.Context, key string) (pricecache.Entry, bool, error) {
	query := `SELECT payload, written_at FROM price_cache WHERE cache_key = ?`
	row := s.db.QueryRowContext(ctx, query, key)

	var payload string
	var writtenAt int64
	err := row.Scan(&payload, &writtenAt)
	if err == sql.ErrNoRows {
		return pricecache.Entry{}, false, nil
	}
	if err != nil {
		return pricecache.Entry{}, false, fmt.Errorf("scan cache row: %w", err)
	}

	var options []domain.PriceOption
	if err := json.Unmarshal([]byte(payload), &options); err != nil {
		return pricecache.Entry{}, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return pricecache.Entry{Options: options, WrittenAt: time.Unix(writtenAt, 0)}, true, nil
}

// Put implements pricecache.Store. Writes replace any prior entry wholesale.
func (s *SQLiteStore) Put(ctx context.Context, key string, entry pricecache.Entry) error {
	payload, err := json.Marshal(entry.Options)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}

	query := `
	INSERT INTO price_cache (cache_key, payload, written_at)
	VALUES (?, ?, ?)
	ON CONFLICT(cache_key) DO UPDATE SET
		payload = excluded.payload,
		written_at = excluded.written_at`

	return shared.RetrySQLite(ctx, "put cache entry", func() error {
		if _, err := s.db.ExecContext(ctx, query, key, string(payload), entry.WrittenAt.Unix()); err != nil {
			return fmt.Errorf("put cache entry: %w", err)
		}
		return nil
	})
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
