// Package storage is the client-local durable state: the bearer token, the
// last-known-good raw user payload, and the generated device identifier.
// It is the localStorage of this client, one file per key under a state
// directory. There is no schema versioning; forward compatibility of the user
// payload rests on the profile mapper's fallback rules.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Fixed storage keys.
const (
	keyToken    = "token"
	keyRawUser  = "user.json"
	keyDeviceID = "device_id"
)

// Store reads and writes the persisted session state. The session transitions
// (login, refresh, logout) are the only writers; every outbound request reads.
// A mutex guards the files since Go, unlike the browser, is not
// single-threaded.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Token returns the persisted bearer token, or "" when absent.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return strings.TrimSpace(s.read(keyToken))
}

// SetToken persists the bearer token.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(keyToken, []byte(token))
}

// ClearToken removes the persisted bearer token.
func (s *Store) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(keyToken)
}

// RawUser returns the last persisted raw user payload, or nil when absent.
func (s *Store) RawUser() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b := s.read(keyRawUser); b != "" {
		return []byte(b)
	}
	return nil
}

// SetRawUser overwrites the last-known-good raw user payload.
func (s *Store) SetRawUser(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(keyRawUser, payload)
}

// Clear removes the token and the raw user payload. The device identifier
// survives logout: it identifies the installation, not the session.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.remove(keyToken); err != nil {
		return err
	}
	return s.remove(keyRawUser)
}

// DeviceID returns the stable per-installation identifier, generating and
// persisting a random UUID on first use. Collision probability is low enough
// to treat it as unique within a deployment; it is not a cryptographic claim.
func (s *Store) DeviceID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id := strings.TrimSpace(s.read(keyDeviceID)); id != "" {
		return id, nil
	}

	id := uuid.New().String()
	if err := s.write(keyDeviceID, []byte(id)); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}

// read returns the contents of the given key, or "" when missing.
func (s *Store) read(key string) string {
	b, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		return ""
	}
	return string(b)
}

// write persists the value atomically: temp file then rename, so a crash
// mid-write never leaves a truncated key.
func (s *Store) write(key string, value []byte) error {
	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// remove deletes the given key; missing keys are not an error.
func (s *Store) remove(key string) error {
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
