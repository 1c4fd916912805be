package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned when a slot holds no secret.
var ErrNotFound = errors.New("no stored credential")

// Store persists one secret per named slot.
type Store interface {
	Get(slot string) (string, error)
	Set(slot, secret string) error
	Delete(slot string) error
}

// FileStore keeps secrets in a JSON file readable only by the owner.
type FileStore struct {
	Path string

	mu sync.Mutex
}

// NewFileStore returns a store backed by credentials.json in dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Path: filepath.Join(dir, "credentials.json")}
}

func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading credential store: %w", err)
	}
	slots := map[string]string{}
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, fmt.Errorf("parsing credential store: %w", err)
	}
	return slots, nil
}

func (s *FileStore) save(slots map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}
	data, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing credential store: %w", err)
	}
	return os.Rename(tmp, s.Path)
}

// Get returns the secret stored in slot.
func (s *FileStore) Get(slot string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots, err := s.load()
	if err != nil {
		return "", err
	}
	secret, ok := slots[slot]
	if !ok || secret == "" {
		return "", ErrNotFound
	}
	return secret, nil
}

// Set stores secret in slot, replacing any previous value.
func (s *FileStore) Set(slot, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots, err := s.load()
	if err != nil {
		return err
	}
	slots[slot] = secret
	return s.save(slots)
}

// Delete removes slot. Deleting an empty slot is not an error.
func (s *FileStore) Delete(slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := slots[slot]; !ok {
		return nil
	}
	delete(slots, slot)
	return s.save(slots)
}
