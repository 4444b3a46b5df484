package cover

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/llehouerou/albumgallery/internal/tags"
)

// DefaultPatterns are the cover file name patterns matched when none are configured.
var DefaultPatterns = []string{"cover.*", "folder.*"}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// IsImageFile returns true if the path has a supported image extension.
func IsImageFile(path string) bool {
	return slices.Contains(imageExtensions, strings.ToLower(filepath.Ext(path)))
}

// MatchesPattern reports whether the base name of path matches any of the
// glob patterns, ignoring case.
func MatchesPattern(path string, patterns []string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, p := range patterns {
		if ok, _ := filepath.Match(strings.ToLower(p), name); ok {
			return true
		}
	}
	return false
}

// Discover walks the given folders and returns cover images matching patterns,
// sorted by path. A directory contributes at most one cover: the first
// matching file by name. Folders that cannot be read are logged and skipped;
// an error is returned only when none of them can.
func Discover(folders, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	byDir := make(map[string]string)
	var errs []error
	for _, folder := range folders {
		if _, err := os.Stat(folder); err != nil {
			log.WithField("folder", folder).Warn(err)
			errs = append(errs, err)
			continue
		}
		_ = filepath.WalkDir(folder, func(path string, d os.DirEntry, walkErr error) error {
			// Skip unreadable entries and keep scanning the rest of the tree
			if walkErr != nil {
				return nil //nolint:nilerr // intentionally skipping errors
			}
			if d.IsDir() || !IsImageFile(path) || !MatchesPattern(path, patterns) {
				return nil
			}
			dir := filepath.Dir(path)
			if existing, ok := byDir[dir]; !ok || path < existing {
				byDir[dir] = path
			}
			return nil
		})
	}

	if len(folders) > 0 && len(errs) == len(folders) {
		return nil, errors.Join(errs...)
	}

	covers := make([]string, 0, len(byDir))
	for _, path := range byDir {
		covers = append(covers, path)
	}
	slices.Sort(covers)
	return covers, nil
}

// FirstTrack returns the audio file in dir most likely to be the first track:
// the first file (by name) containing "01", else the first audio file.
// Returns "" when the directory has no audio files.
func FirstTrack(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var first string
	for _, e := range entries {
		if e.IsDir() || !tags.IsMusicFile(e.Name()) {
			continue
		}
		if strings.Contains(e.Name(), "01") {
			return filepath.Join(dir, e.Name()), nil
		}
		if first == "" {
			first = filepath.Join(dir, e.Name())
		}
	}
	return first, nil
}

// ReadMetadata reads album metadata for a cover from the first track in its
// directory. Returns zero metadata without error when the directory holds no
// audio files.
func ReadMetadata(coverPath string) (Metadata, error) {
	track, err := FirstTrack(filepath.Dir(coverPath))
	if err != nil || track == "" {
		return Metadata{}, err
	}

	t, err := tags.Read(track)
	if err != nil {
		return Metadata{}, err
	}

	artist := t.AlbumArtist
	if artist == "" {
		artist = t.Artist
	}
	return Metadata{
		Album:  t.Album,
		Artist: artist,
		Date:   t.YearString(),
		Genres: t.Genre,
	}, nil
}
