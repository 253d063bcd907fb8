package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

type session struct {
	Values    map[string]string `json:"values"`
	CreatedAt int64             `json:"createdAt"`
	UpdatedAt int64             `json:"updatedAt"`
}

type metaData struct {
	Sessions map[string]session `json:"sessions"`
}

// Store is a SessionStore persisted to a single JSON file.
type Store struct {
	mu   sync.RWMutex
	path string
	ttl  time.Duration
	data metaData
	now  func() time.Time
}

func NewStore(baseDir string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	store := &Store{
		path: filepath.Join(baseDir, "sessions.json"),
		ttl:  ttl,
		now:  time.Now,
	}
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = metaData{Sessions: map[string]session{}}

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("open sessions file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&s.data); err != nil {
		if errors.Is(err, io.EOF) {
			return s.saveLocked()
		}
		return fmt.Errorf("decode sessions file: %w", err)
	}

	if s.data.Sessions == nil {
		s.data.Sessions = map[string]session{}
	}
	for id, sess := range s.data.Sessions {
		if sess.Values == nil {
			sess.Values = map[string]string{}
			s.data.Sessions[id] = sess
		}
	}
	return nil
}

func (s *Store) Get(_ context.Context, sessionID, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.data.Sessions[sessionID]
	if !ok || expired(sess.UpdatedAt, s.ttl, s.now()) {
		return nil, ErrNotFound
	}
	value, ok := sess.Values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(value), nil
}

func (s *Store) Set(_ context.Context, sessionID, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Unix()
	sess, ok := s.data.Sessions[sessionID]
	if !ok || expired(sess.UpdatedAt, s.ttl, s.now()) {
		sess = session{Values: map[string]string{}, CreatedAt: now}
	}
	if sess.Values == nil {
		sess.Values = map[string]string{}
	}
	sess.Values[key] = string(value)
	sess.UpdatedAt = now
	s.data.Sessions[sessionID] = sess

	return s.saveLocked()
}

func (s *Store) Delete(_ context.Context, sessionID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.data.Sessions[sessionID]
	if !ok {
		return nil
	}
	if _, ok := sess.Values[key]; !ok {
		return nil
	}

	delete(sess.Values, key)
	if len(sess.Values) == 0 {
		delete(s.data.Sessions, sessionID)
	} else {
		s.data.Sessions[sessionID] = sess
	}

	return s.saveLocked()
}

func (s *Store) PurgeExpired(_ context.Context, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged []string
	for id, sess := range s.data.Sessions {
		if expired(sess.UpdatedAt, s.ttl, now) {
			purged = append(purged, id)
			delete(s.data.Sessions, id)
		}
	}
	if len(purged) == 0 {
		return nil, nil
	}
	sort.Strings(purged)

	if err := s.saveLocked(); err != nil {
		return nil, err
	}
	return purged, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "sessions-*.json")
	if err != nil {
		return fmt.Errorf("create temp sessions file: %w", err)
	}

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode sessions: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp sessions file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace sessions file: %w", err)
	}

	return nil
}
