package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Jovackbud/Research-assisant/internal/config"
)

// ErrNotFound is returned when a session or one of its keys does not exist or
// has expired.
var ErrNotFound = errors.New("session value not found")

// SessionStore is per-browser-session key/value storage. Each session expires
// TTL after its last write.
type SessionStore interface {
	Get(ctx context.Context, sessionID, key string) ([]byte, error)
	Set(ctx context.Context, sessionID, key string, value []byte) error
	Delete(ctx context.Context, sessionID, key string) error
	// PurgeExpired removes sessions idle since before now-TTL and returns their ids.
	PurgeExpired(ctx context.Context, now time.Time) ([]string, error)
	Close() error
}

// OpenSessionStore opens the session store selected by cfg.SessionStore.
func OpenSessionStore(cfg config.Config) (SessionStore, error) {
	switch cfg.SessionStore {
	case config.SessionStoreSQLite:
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "sessions.db"), cfg.SessionTTL)
	case config.SessionStoreFile, "":
		return NewStore(cfg.DataDir, cfg.SessionTTL)
	default:
		return nil, fmt.Errorf("unsupported session store %q", cfg.SessionStore)
	}
}

func expired(updatedAt int64, ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return time.Unix(updatedAt, 0).Add(ttl).Before(now)
}
