package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Fixed keys for the durable client-side state. The session keys are cleared
// together on logout or expiry; draft products live under their own key and
// follow their own lifecycle.
const (
	KeyToken         = "storefront.token"
	KeyEmail         = "storefront.email"
	KeyUsername      = "storefront.username"
	KeyRole          = "storefront.role"
	KeyDraftProducts = "storefront.draftProducts"
)

// SessionKeys are the keys removed by a full session cleanup.
var SessionKeys = []string{KeyToken, KeyEmail, KeyUsername, KeyRole}

// Store is a file-backed key/value store standing in for browser local
// storage. Writes are atomic (temp file + rename), and Watch surfaces changes
// made by other processes sharing the same file, mirroring the platform's
// cross-tab storage notifications.
type Store struct {
	path string
	poll time.Duration

	mu      sync.Mutex
	values  map[string]string
	modTime time.Time
}

// Open loads (or creates) the store file under dir.
func Open(dir, file string, poll time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	s := &Store{
		path:   filepath.Join(dir, file),
		poll:   poll,
		values: make(map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set persists value under key.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.save()
}

// Delete removes the given keys. Missing keys are ignored.
func (s *Store) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return s.save()
}

// Watch emits a signal whenever another process changes the backing file.
// The channel closes when done is closed. Own writes do not fire.
func (s *Store) Watch(done <-chan struct{}) <-chan struct{} {
	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(s.poll)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if s.reloadIfChanged() {
					select {
					case ch <- struct{}{}:
					default:
					}
				}
			}
		}
	}()
	return ch
}

func (s *Store) reloadIfChanged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, err := os.Stat(s.path)
	if err != nil {
		return false
	}
	if info.ModTime().Equal(s.modTime) {
		return false
	}
	if err := s.loadLocked(); err != nil {
		return false
	}
	return true
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.values = make(map[string]string)
			return nil
		}
		return fmt.Errorf("read storage file: %w", err)
	}
	values := make(map[string]string)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &values); err != nil {
			// A corrupt file is treated as empty rather than bricking the app.
			values = make(map[string]string)
		}
	}
	s.values = values
	if info, err := os.Stat(s.path); err == nil {
		s.modTime = info.ModTime()
	}
	return nil
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace storage: %w", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		s.modTime = info.ModTime()
	}
	return nil
}

// Credential returns the stored bearer token. Implements the api client's
// credential source.
func (s *Store) Credential() (string, bool) {
	v, ok := s.Get(KeyToken)
	return v, ok && v != ""
}
