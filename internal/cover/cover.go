// Package cover models album covers and finds them in a music library.
package cover

import (
	"strings"

	"github.com/llehouerou/albumgallery/internal/colorspace"
)

// Metadata is the album information associated with a cover.
// Genres is a semicolon-joined list.
type Metadata struct {
	Album  string `json:"album"`
	Artist string `json:"artist"`
	Date   string `json:"date"`
	Genres string `json:"genres"`
}

// Item is a cover with its dominant color. Path is the stable key.
type Item struct {
	Path  string         `json:"file"`
	Color colorspace.RGB `json:"color"`
	Tags  Metadata       `json:"tags"`
}

// GenreList splits Genres on semicolons, trimming blanks.
func (m Metadata) GenreList() []string {
	if m.Genres == "" {
		return nil
	}
	parts := strings.Split(m.Genres, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsZero reports whether no metadata is known.
func (m Metadata) IsZero() bool {
	return m == Metadata{}
}

// Paths returns the paths of items in order.
func Paths(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Path
	}
	return out
}
