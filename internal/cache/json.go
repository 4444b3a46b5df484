package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/llehouerou/albumgallery/internal/cover"
)

// JSONStore keeps records as a JSON array in a single file:
//
//	[{"color":{"r":1,"g":2,"b":3},"file":"...","tags":{"album":"","artist":"","date":"","genres":""}}]
type JSONStore struct {
	mu   sync.Mutex
	path string
}

// NewJSONStore returns a store backed by path. The file is created on the
// first Merge.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load returns the stored records. A missing file is an empty cache.
func (s *JSONStore) Load() ([]cover.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *JSONStore) load() ([]cover.Item, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []cover.Item{}, nil
	}
	if err != nil {
		return nil, err
	}

	var items []cover.Item
	if len(data) == 0 {
		return []cover.Item{}, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if items == nil {
		items = []cover.Item{}
	}
	return items, nil
}

// Merge appends records for unknown paths and rewrites the file.
func (s *JSONStore) Merge(items []cover.Item) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load()
	if err != nil {
		return 0, err
	}

	added := newRecords(Index(existing), items)
	if len(added) == 0 {
		return 0, nil
	}

	if err := s.write(append(existing, added...)); err != nil {
		return 0, err
	}
	return len(added), nil
}

// write replaces the file through a temporary file in the same directory.
func (s *JSONStore) write(items []cover.Item) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".covers-*.json")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Close is a no-op; JSONStore holds no open handles.
func (s *JSONStore) Close() error {
	return nil
}
