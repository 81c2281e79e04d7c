package quota

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore persists the usage log as a JSON array in a single file.
// The log is read and fully rewritten on every check/record cycle; at a
// ceiling of 20 entries per day that is cheaper than anything smarter.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to the given path. Parent
// directories are created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultLogPath returns the usage log location under the user config
// directory, falling back to the working directory if none is available.
func DefaultLogPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "paperlens_usage.json"
	}
	return filepath.Join(dir, "paperlens", "usage.json")
}

func (s *FileStore) Load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read usage log: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse usage log: %w", err)
	}
	return entries, nil
}

func (s *FileStore) Save(entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create usage log directory: %w", err)
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode usage log: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write usage log: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests and for running without any
// persistence.
type MemStore struct {
	entries []Entry
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Load() ([]Entry, error) {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *MemStore) Save(entries []Entry) error {
	s.entries = make([]Entry, len(entries))
	copy(s.entries, entries)
	return nil
}
