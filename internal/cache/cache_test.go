package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/albumgallery/internal/colorspace"
	"github.com/llehouerou/albumgallery/internal/cover"
)

func sampleItems(n int) []cover.Item {
	items := make([]cover.Item, n)
	for i := range n {
		items[i] = cover.Item{
			Path:  fmt.Sprintf("/music/album%02d/cover.jpg", i),
			Color: colorspace.RGB{R: uint8(i * 7), G: uint8(255 - i), B: uint8(i * 3)},
			Tags: cover.Metadata{
				Album:  fmt.Sprintf("Album %d", i),
				Artist: "Artist",
				Date:   fmt.Sprintf("%d", 1970+i),
				Genres: "Jazz;Soul",
			},
		}
	}
	// one record with every tag missing
	if n > 0 {
		items[n-1].Tags = cover.Metadata{}
	}
	return items
}

// stores returns a fresh store of every backend.
func stores(t *testing.T) map[string]Store {
	t.Helper()

	sq, err := OpenSQLite(":memory:")
	require.NoError(t, err)

	m := map[string]Store{
		BackendJSON:   NewJSONStore(filepath.Join(t.TempDir(), "covers.json")),
		BackendSQLite: sq,
	}
	t.Cleanup(func() {
		for _, s := range m {
			s.Close()
		}
	})
	return m
}

func TestStore_EmptyLoad(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			items, err := s.Load()
			require.NoError(t, err)
			assert.NotNil(t, items)
			assert.Empty(t, items)
		})
	}
}

func TestStore_RoundTrip(t *testing.T) {
	want := sampleItems(12)

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			added, err := s.Merge(want)
			require.NoError(t, err)
			assert.Equal(t, len(want), added)

			got, err := s.Load()
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestStore_MergeIsAdditive(t *testing.T) {
	first := sampleItems(5)

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Merge(first)
			require.NoError(t, err)

			changed := first[2]
			changed.Color = colorspace.RGB{R: 1, G: 1, B: 1}
			fresh := cover.Item{Path: "/music/new/cover.png", Color: colorspace.RGB{R: 9}}

			added, err := s.Merge([]cover.Item{changed, fresh, fresh})
			require.NoError(t, err)
			assert.Equal(t, 1, added)

			got, err := s.Load()
			require.NoError(t, err)
			require.Len(t, got, len(first)+1)
			assert.Equal(t, first, got[:len(first)], "existing records are kept unchanged")
			assert.Equal(t, fresh, got[len(first)])
		})
	}
}

func TestStore_MergeNothing(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			added, err := s.Merge(nil)
			require.NoError(t, err)
			assert.Zero(t, added)
		})
	}
}

func TestJSONStore_FileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "covers.json")
	s := NewJSONStore(path)

	items := []cover.Item{{
		Path:  "/m/a/cover.jpg",
		Color: colorspace.RGB{R: 10, G: 20, B: 30},
		Tags:  cover.Metadata{Album: "A", Artist: "B", Date: "1999", Genres: "Rock"},
	}}
	_, err := s.Merge(items)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "/m/a/cover.jpg", raw[0]["file"])
	assert.Equal(t, map[string]any{"r": 10.0, "g": 20.0, "b": 30.0}, raw[0]["color"])
	assert.Equal(t, map[string]any{
		"album": "A", "artist": "B", "date": "1999", "genres": "Rock",
	}, raw[0]["tags"])
}

func TestJSONStore_ByteExactAfterReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "covers.json")
	items := sampleItems(20)

	_, err := NewJSONStore(path).Merge(items)
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// a second store merging the same records leaves the file untouched
	added, err := NewJSONStore(path).Merge(items)
	require.NoError(t, err)
	assert.Zero(t, added)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestJSONStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "covers.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewJSONStore(path).Load()
	assert.Error(t, err)
}

func TestJSONStore_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "covers.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	items, err := NewJSONStore(path).Load()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSQLiteStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "covers.db")
	items := sampleItems(3)

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	_, err = s.Merge(items)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open("", filepath.Join(dir, "covers.json"))
	require.NoError(t, err)
	assert.IsType(t, &JSONStore{}, s)

	s, err = Open("SQLite", filepath.Join(dir, "covers.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("redis", filepath.Join(dir, "x"))
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestIndex_FirstWins(t *testing.T) {
	items := []cover.Item{
		{Path: "a", Color: colorspace.RGB{R: 1}},
		{Path: "a", Color: colorspace.RGB{R: 2}},
		{Path: "b"},
	}

	idx := Index(items)

	assert.Len(t, idx, 2)
	assert.Equal(t, uint8(1), idx["a"].Color.R)
}
