package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	SessionStoreFile   = "file"
	SessionStoreSQLite = "sqlite"
)

type Config struct {
	Port                 string
	BackendURL           string
	BackendTimeout       time.Duration
	MaxUploadBytes       int64
	MaxRequestBytes      int64
	DataDir              string
	SessionStore         string
	SessionSecret        string
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	CORSOrigins          []string
}

func LoadConfig() (Config, error) {
	cfg := Config{}

	cfg.Port = envOrDefault("PORT", "8080")
	cfg.BackendURL = strings.TrimRight(envOrDefault("BACKEND_URL", "http://localhost:8000"), "/")
	cfg.DataDir = envOrDefault("DATA_DIR", "data")
	cfg.SessionSecret = envOrDefault("SESSION_SECRET", "change-me")
	cfg.SessionStore = strings.ToLower(envOrDefault("SESSION_STORE", SessionStoreFile))
	cfg.CORSOrigins = listEnv("CORS_ORIGINS", []string{"http://localhost:8080"})

	switch cfg.SessionStore {
	case SessionStoreFile, SessionStoreSQLite:
	default:
		return Config{}, fmt.Errorf("unsupported SESSION_STORE %q", cfg.SessionStore)
	}

	timeoutSeconds, err := parseIntEnv("BACKEND_TIMEOUT_SECONDS", 600)
	if err != nil {
		return Config{}, fmt.Errorf("parse BACKEND_TIMEOUT_SECONDS: %w", err)
	}
	cfg.BackendTimeout = time.Duration(timeoutSeconds) * time.Second

	maxUploadMB, err := parseIntEnv("MAX_UPLOAD_MB", 50)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_UPLOAD_MB: %w", err)
	}
	cfg.MaxUploadBytes = maxUploadMB * 1024 * 1024

	maxRequestMB, err := parseIntEnv("MAX_REQUEST_MB", 200)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_REQUEST_MB: %w", err)
	}
	cfg.MaxRequestBytes = maxRequestMB * 1024 * 1024

	ttlSeconds, err := parseIntEnv("SESSION_TTL_SECONDS", 86400)
	if err != nil {
		return Config{}, fmt.Errorf("parse SESSION_TTL_SECONDS: %w", err)
	}
	cfg.SessionTTL = time.Duration(ttlSeconds) * time.Second

	sweepSeconds, err := parseIntEnv("SESSION_SWEEP_SECONDS", 600)
	if err != nil {
		return Config{}, fmt.Errorf("parse SESSION_SWEEP_SECONDS: %w", err)
	}
	cfg.SessionSweepInterval = time.Duration(sweepSeconds) * time.Second

	absDataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = absDataDir

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseIntEnv(key string, fallback int64) (int64, error) {
	value := envOrDefault(key, "")
	if value == "" {
		return fallback, nil
	}

	num, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return num, nil
}

func listEnv(key string, fallback []string) []string {
	value := envOrDefault(key, "")
	if value == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
