package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a SessionStore backed by a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewSQLiteStore(path string, ttl time.Duration) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS session_values (
  session_id TEXT NOT NULL,
  key TEXT NOT NULL,
  value BLOB NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  PRIMARY KEY (session_id, key)
);
CREATE INDEX IF NOT EXISTS idx_session_values_updated_at ON session_values(updated_at);
`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create session schema: %w", err)
	}

	return &SQLiteStore{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	var (
		value     []byte
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT value, updated_at FROM session_values
WHERE session_id = ? AND key = ?`, sessionID, key).Scan(&value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session value: %w", err)
	}
	if expired(updatedAt, s.ttl, s.now()) {
		return nil, ErrNotFound
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, sessionID, key string, value []byte) error {
	now := s.now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session write: %w", err)
	}
	defer tx.Rollback()

	if s.ttl > 0 {
		cutoff := now.Add(-s.ttl).Unix()
		if _, err := tx.ExecContext(ctx, `DELETE FROM session_values WHERE session_id = ? AND updated_at < ?`, sessionID, cutoff); err != nil {
			return fmt.Errorf("drop expired session: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO session_values (session_id, key, value, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		sessionID, key, value, now.Unix(), now.Unix()); err != nil {
		return fmt.Errorf("write session value: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE session_values SET updated_at = ? WHERE session_id = ?`, now.Unix(), sessionID); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) Delete(ctx context.Context, sessionID, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_values WHERE session_id = ? AND key = ?`, sessionID, key); err != nil {
		return fmt.Errorf("delete session value: %w", err)
	}
	return nil
}

func (s *SQLiteStore) PurgeExpired(ctx context.Context, now time.Time) ([]string, error) {
	if s.ttl <= 0 {
		return nil, nil
	}
	cutoff := now.Add(-s.ttl).Unix()

	rows, err := s.db.QueryContext(ctx, `
SELECT DISTINCT session_id FROM session_values
WHERE updated_at < ?
ORDER BY session_id`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expired sessions: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(ids) == 0 {
		return nil, nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_values WHERE updated_at < ?`, cutoff); err != nil {
		return nil, fmt.Errorf("purge expired sessions: %w", err)
	}
	return ids, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
