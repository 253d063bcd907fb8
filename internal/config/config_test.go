package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "BACKEND_URL", "BACKEND_TIMEOUT_SECONDS", "MAX_UPLOAD_MB", "MAX_REQUEST_MB",
		"DATA_DIR", "SESSION_STORE", "SESSION_SECRET", "SESSION_TTL_SECONDS",
		"SESSION_SWEEP_SECONDS", "CORS_ORIGINS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8000", cfg.BackendURL)
	assert.Equal(t, 10*time.Minute, cfg.BackendTimeout)
	assert.Equal(t, int64(50*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, SessionStoreFile, cfg.SessionStore)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.True(t, filepath.IsAbs(cfg.DataDir))
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.CORSOrigins)
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BACKEND_URL", "http://extractor:9000/")
	t.Setenv("BACKEND_TIMEOUT_SECONDS", "30")
	t.Setenv("MAX_UPLOAD_MB", "5")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("SESSION_STORE", "SQLite")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://extractor:9000", cfg.BackendURL)
	assert.Equal(t, 30*time.Second, cfg.BackendTimeout)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, SessionStoreSQLite, cfg.SessionStore)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("MAX_UPLOAD_MB", "lots")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "MAX_UPLOAD_MB")

	t.Setenv("MAX_UPLOAD_MB", "")
	t.Setenv("SESSION_STORE", "redis")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "SESSION_STORE")
}
