package tags

import (
	"strings"

	goflac "github.com/go-flac/go-flac"
	"go.senan.xyz/taglib"
)

// readWithTaglib reads FLAC, M4A, and Ogg metadata with TagLib when
// dhowden/tag fails.
func readWithTaglib(path string) (*Tag, error) {
	rawTags, err := taglib.ReadTags(path)
	if err != nil {
		return nil, err
	}
	tags := taglibTags(rawTags)

	artist := tags.get(taglib.Artist)
	albumArtist := tags.get(taglib.AlbumArtist)
	if albumArtist == "" {
		albumArtist = artist
	}

	return &Tag{
		Path:        path,
		Artist:      artist,
		AlbumArtist: albumArtist,
		Album:       tags.get(taglib.Album),
		// Multi-valued genres are kept semicolon-joined.
		Genre: strings.Join(rawTags[taglib.Genre], ";"),
		Date:  tags.get(taglib.Date, "YEAR"),
	}, nil
}

// readFLACDate reads DATE (or YEAR) from the FLAC Vorbis comment block.
func readFLACDate(path string, t *Tag) {
	f, err := goflac.ParseFile(path)
	if err != nil {
		return
	}

	for _, meta := range f.Meta {
		if meta.Type != goflac.VorbisComment {
			continue
		}
		comments := parseVorbisComments(meta.Data)
		if date := comments["DATE"]; date != "" {
			t.Date = date
		} else if year := comments["YEAR"]; year != "" {
			t.Date = year
		}
		return
	}
}

// parseVorbisComments parses raw Vorbis comment data into a map.
func parseVorbisComments(data []byte) map[string]string {
	comments := make(map[string]string)

	if len(data) < 4 {
		return comments
	}

	// Skip vendor string
	vendorLen := le32(data)
	pos := 4 + vendorLen
	if pos < 4 || pos+4 > len(data) {
		return comments
	}

	commentCount := le32(data[pos:])
	pos += 4

	for i := 0; i < commentCount && pos+4 <= len(data); i++ {
		commentLen := le32(data[pos:])
		pos += 4

		if commentLen < 0 || pos+commentLen > len(data) {
			break
		}

		comment := string(data[pos : pos+commentLen])
		pos += commentLen

		// Split on first '='
		if idx := strings.Index(comment, "="); idx > 0 {
			comments[strings.ToUpper(comment[:idx])] = comment[idx+1:]
		}
	}

	return comments
}

func le32(b []byte) int {
	return int(b[0]) | int(b[1])<<8 | int(b[2])<<16 | int(b[3])<<24
}
