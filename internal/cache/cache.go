// Package cache persists computed cover colors so unchanged covers are not
// analyzed again.
//
// Records are keyed by cover path. Merging is additive: records for new paths
// are appended and existing records are never replaced.
package cache

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/llehouerou/albumgallery/internal/cover"
)

const appName = "albumgallery"

// Backend names.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// ErrUnknownBackend is returned by Open for unrecognized backend names.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Store is a persistent set of cover records.
type Store interface {
	// Load returns all records in insertion order.
	Load() ([]cover.Item, error)
	// Merge appends records whose path is not stored yet and returns how many
	// were added.
	Merge(items []cover.Item) (int, error)
	Close() error
}

// Open opens the store for backend at path. An empty path selects the
// default location under the XDG data directory.
func Open(backend, path string) (Store, error) {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend == "" {
		backend = BackendJSON
	}

	if path == "" {
		var err error
		path, err = DefaultPath(backend)
		if err != nil {
			return nil, err
		}
	}

	switch backend {
	case BackendJSON:
		return NewJSONStore(path), nil
	case BackendSQLite:
		return OpenSQLite(path)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

// DefaultPath returns the default cache file for backend, creating its
// parent directory.
func DefaultPath(backend string) (string, error) {
	name := "covers.json"
	if backend == BackendSQLite {
		name = "covers.db"
	}
	return xdg.DataFile(filepath.Join(appName, name))
}

// Index maps records by path. The first record for a path wins.
func Index(items []cover.Item) map[string]cover.Item {
	idx := make(map[string]cover.Item, len(items))
	for _, it := range items {
		if _, ok := idx[it.Path]; !ok {
			idx[it.Path] = it
		}
	}
	return idx
}

// newRecords returns the items whose path is neither in existing nor earlier
// in items.
func newRecords(existing map[string]cover.Item, items []cover.Item) []cover.Item {
	seen := make(map[string]bool, len(items))
	var out []cover.Item
	for _, it := range items {
		if _, ok := existing[it.Path]; ok || seen[it.Path] {
			continue
		}
		seen[it.Path] = true
		out = append(out, it)
	}
	return out
}
