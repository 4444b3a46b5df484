package cover

import (
	"strconv"
	"strings"
)

// Filter selects covers by metadata. Zero-valued fields are inactive.
type Filter struct {
	Genres []string // any of these genres, case-insensitive
	Artist string   // case-insensitive substring of the artist
	Year   int      // exact release year
	Decade int      // first year of a decade, e.g. 1990
}

// ParseGenres splits a semicolon-separated genre argument.
func ParseGenres(s string) []string {
	return Metadata{Genres: s}.GenreList()
}

// Active reports whether any criterion is set.
func (f Filter) Active() bool {
	return len(f.Genres) > 0 || f.Artist != "" || f.Year != 0 || f.Decade != 0
}

// Match reports whether m satisfies every active criterion.
// Metadata without the needed field never matches that criterion.
func (f Filter) Match(m Metadata) bool {
	if len(f.Genres) > 0 && !matchGenres(f.Genres, m.GenreList()) {
		return false
	}
	if f.Artist != "" && !strings.Contains(strings.ToLower(m.Artist), strings.ToLower(f.Artist)) {
		return false
	}
	if f.Year != 0 || f.Decade != 0 {
		year, err := strconv.Atoi(strings.TrimSpace(m.Date))
		if err != nil {
			return false
		}
		if f.Year != 0 && year != f.Year {
			return false
		}
		if f.Decade != 0 && (year < f.Decade || year >= f.Decade+10) {
			return false
		}
	}
	return true
}

// Apply returns the items matching f, preserving order.
func (f Filter) Apply(items []Item) []Item {
	if !f.Active() {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if f.Match(it.Tags) {
			out = append(out, it)
		}
	}
	return out
}

func matchGenres(want, have []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(w, h) {
				return true
			}
		}
	}
	return false
}
