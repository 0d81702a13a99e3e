package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"aa-consent-gateway/pkg/logger"
)

// SQLiteSessionStore keeps session blobs in a local sqlite table.
// Rows with a non-null expires_at in the past are treated as absent and
// removed by CleanupExpired.
type SQLiteSessionStore struct {
	db *sql.DB
}

// NewSQLiteSessionStore opens (and creates if needed) the session database
func NewSQLiteSessionStore(dbPath string) (*SQLiteSessionStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, err
	}

	// Create table if not exists
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			expires_at DATETIME,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteSessionStore{db: db}, nil
}

// Close closes database connection
func (s *SQLiteSessionStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteSessionStore) Exists(ctx context.Context, key string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sessions
		WHERE session_key = ? AND (expires_at IS NULL OR expires_at > ?)
	`, key, time.Now().UTC()).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SQLiteSessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM sessions
		WHERE session_key = ? AND (expires_at IS NULL OR expires_at > ?)
		LIMIT 1
	`, key, time.Now().UTC()).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set upserts value under key. A zero ttl stores the row without expiry.
func (s *SQLiteSessionStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	var expiresAt any
	if ttl > 0 {
		expiresAt = time.Now().UTC().Add(ttl)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_key, value, expires_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`, key, value, expiresAt)
	return err
}

func (s *SQLiteSessionStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_key = ?`, key)
	return err
}

// CleanupExpired removes expired session rows
func (s *SQLiteSessionStore) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE expires_at IS NOT NULL AND expires_at <= ?
	`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Count returns total live (non-expired) sessions
func (s *SQLiteSessionStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sessions WHERE expires_at IS NULL OR expires_at > ?
	`, time.Now().UTC()).Scan(&count)
	return count, err
}

// RunCleanup deletes expired rows every interval until ctx is done
func (s *SQLiteSessionStore) RunCleanup(ctx context.Context, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := s.CleanupExpired(ctx)
			if err != nil {
				log.Error("Failed to cleanup expired sessions", "error", err)
			} else if count > 0 {
				log.Info("Cleaned up expired sessions", "count", count)
			}
		}
	}
}
