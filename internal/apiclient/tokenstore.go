package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"

	"github.com/thenextevent/eventdesk/internal/models"
)

// Snapshot is what a TokenStore keeps between runs.
type Snapshot struct {
	Token string       `json:"token,omitempty"`
	User  *models.User `json:"user,omitempty"`
}

// TokenStore persists the session across process restarts.
type TokenStore interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
	Clear() error
}

// DefaultSessionPath returns the session file location under the XDG data
// directory.
func DefaultSessionPath() string {
	return filepath.Join(xdg.DataHome, "eventdesk", "session.json")
}

// FileStore keeps the snapshot as a 0600 JSON file.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultSessionPath()
	}
	return &FileStore{Path: path}
}

func (s *FileStore) Load() (Snapshot, error) {
	var snap Snapshot
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return snap, nil
	}
	if err != nil {
		return snap, fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("parse session: %w", err)
	}
	return snap, nil
}

func (s *FileStore) Save(snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.Path, data, 0600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// MemoryStore is a TokenStore for tests and per-request sessions.
type MemoryStore struct {
	mu   sync.Mutex
	snap Snapshot
}

func (s *MemoryStore) Load() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap, nil
}

func (s *MemoryStore) Save(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{}
	return nil
}
