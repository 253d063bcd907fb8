package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jovackbud/Research-assisant/internal/config"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newStores(t *testing.T, ttl time.Duration, c *clock) map[string]SessionStore {
	t.Helper()

	fileStore, err := NewStore(t.TempDir(), ttl)
	require.NoError(t, err)
	fileStore.now = c.now

	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"), ttl)
	require.NoError(t, err)
	sqliteStore.now = c.now

	t.Cleanup(func() {
		_ = fileStore.Close()
		_ = sqliteStore.Close()
	})

	return map[string]SessionStore{"file": fileStore, "sqlite": sqliteStore}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	ctx := context.Background()

	for name, store := range newStores(t, time.Hour, c) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, "s1", "analysisResults")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set(ctx, "s1", "analysisResults", []byte(`{"a":1}`)))
			require.NoError(t, store.Set(ctx, "s1", "flash", []byte("hello")))

			got, err := store.Get(ctx, "s1", "analysisResults")
			require.NoError(t, err)
			assert.Equal(t, `{"a":1}`, string(got))

			_, err = store.Get(ctx, "s2", "analysisResults")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Delete(ctx, "s1", "analysisResults"))
			_, err = store.Get(ctx, "s1", "analysisResults")
			assert.ErrorIs(t, err, ErrNotFound)

			got, err = store.Get(ctx, "s1", "flash")
			require.NoError(t, err)
			assert.Equal(t, "hello", string(got))

			require.NoError(t, store.Delete(ctx, "missing", "flash"))
		})
	}
}

func TestSessionStoreExpiry(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	c := &clock{t: start}
	ctx := context.Background()

	for name, store := range newStores(t, time.Hour, c) {
		t.Run(name, func(t *testing.T) {
			c.t = start
			require.NoError(t, store.Set(ctx, "old", "k", []byte("v")))
			c.t = start.Add(50 * time.Minute)
			require.NoError(t, store.Set(ctx, "fresh", "k", []byte("v")))

			c.t = start.Add(90 * time.Minute)
			_, err := store.Get(ctx, "old", "k")
			assert.ErrorIs(t, err, ErrNotFound)

			got, err := store.Get(ctx, "fresh", "k")
			require.NoError(t, err)
			assert.Equal(t, "v", string(got))

			purged, err := store.PurgeExpired(ctx, c.t)
			require.NoError(t, err)
			assert.Equal(t, []string{"old"}, purged)

			purged, err = store.PurgeExpired(ctx, c.t)
			require.NoError(t, err)
			assert.Empty(t, purged)
		})
	}
}

func TestFileStoreSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "s1", "analysisResults", []byte(`{"total_files_uploaded":1}`)))

	reopened, err := NewStore(dir, time.Hour)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "s1", "analysisResults")
	require.NoError(t, err)
	assert.Equal(t, `{"total_files_uploaded":1}`, string(got))
}

func TestFileStoreNullValuesOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	now := time.Now().Unix()

	raw := fmt.Sprintf(`{"sessions":{"s1":{"values":null,"createdAt":%d,"updatedAt":%d}}}`, now, now)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sessions.json"), []byte(raw), 0o644))

	store, err := NewStore(dir, time.Hour)
	require.NoError(t, err)

	_, err = store.Get(ctx, "s1", "flash")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NotPanics(t, func() {
		require.NoError(t, store.Set(ctx, "s1", "flash", []byte("hello")))
	})
	got, err := store.Get(ctx, "s1", "flash")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
	require.NoError(t, store.Delete(ctx, "s1", "flash"))
}

func TestOpenSessionStore(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenSessionStore(config.Config{DataDir: dir, SessionStore: config.SessionStoreSQLite, SessionTTL: time.Hour})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, store.Close())

	store, err = OpenSessionStore(config.Config{DataDir: dir, SessionStore: config.SessionStoreFile})
	require.NoError(t, err)
	assert.IsType(t, &Store{}, store)

	_, err = OpenSessionStore(config.Config{DataDir: dir, SessionStore: "redis"})
	assert.Error(t, err)
}
