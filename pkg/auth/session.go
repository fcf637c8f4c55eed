package auth

import (
	"errors"
	"os"
	"sync"

	"igfakecheck/pkg/instagram"
)

// SessionStore persists the session settings artifact between runs
type SessionStore interface {
	// Load returns the saved settings, or nil when nothing was saved
	Load() (*instagram.Settings, error)
	// Save overwrites the saved settings
	Save(s *instagram.Settings) error
}

// FileSessionStore keeps the settings artifact in a JSON file
type FileSessionStore struct {
	Path string
}

// NewFileSessionStore creates a session store backed by path
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{Path: path}
}

// Load reads the settings file. A missing file is not an error.
func (f *FileSessionStore) Load() (*instagram.Settings, error) {
	s, err := instagram.LoadSettings(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return s, err
}

// Save writes the settings file
func (f *FileSessionStore) Save(s *instagram.Settings) error {
	return instagram.DumpSettings(f.Path, s)
}

// MemorySessionStore keeps the settings artifact in memory
type MemorySessionStore struct {
	mu        sync.Mutex
	settings  *instagram.Settings
	LoadError error
	SaveError error
	saves     int
}

// Load returns a copy of the held settings
func (m *MemorySessionStore) Load() (*instagram.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	return m.settings.Clone(), nil
}

// Save replaces the held settings
func (m *MemorySessionStore) Save(s *instagram.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveError != nil {
		return m.SaveError
	}
	m.settings = s.Clone()
	m.saves++
	return nil
}

// Saves returns how many times Save succeeded
func (m *MemorySessionStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
