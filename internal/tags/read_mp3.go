package tags

import (
	"github.com/bogem/id3v2/v2"
)

// readMP3Date reads the release date from ID3v2 frames.
// Leaves t.Date untouched when no date frame is present.
func readMP3Date(path string, t *Tag) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return
	}
	defer id3tag.Close()

	if date := id3Date(id3tag); date != "" {
		t.Date = date
	}
}

// id3Date returns TDRC (ID3v2.4) or TYER with optional TDAT (ID3v2.3).
func id3Date(id3tag *id3v2.Tag) string {
	if date := getID3TextFrame(id3tag, "TDRC"); date != "" {
		return date
	}
	year := getID3TextFrame(id3tag, "TYER")
	if year == "" {
		return ""
	}
	// TDAT is DDMM
	if tdat := getID3TextFrame(id3tag, "TDAT"); len(tdat) == 4 {
		return year + "-" + tdat[2:4] + "-" + tdat[0:2]
	}
	return year
}

// readMP3WithID3v2 reads MP3 metadata using only the id3v2 library.
// This is used when dhowden/tag fails (e.g., on some UTF-16 encoded tags).
func readMP3WithID3v2(path string) (*Tag, error) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	defer id3tag.Close()

	artist := id3tag.Artist()
	albumArtist := getID3TextFrame(id3tag, "TPE2")
	if albumArtist == "" {
		albumArtist = artist
	}

	date := id3Date(id3tag)
	if date == "" {
		if y := id3tag.Year(); len(y) >= 4 {
			date = y[:4]
		}
	}

	return &Tag{
		Path:        path,
		Artist:      artist,
		AlbumArtist: albumArtist,
		Album:       id3tag.Album(),
		Genre:       id3tag.Genre(),
		Date:        date,
	}, nil
}

// getID3TextFrame reads a text frame value from an ID3v2 tag.
func getID3TextFrame(id3tag *id3v2.Tag, frameID string) string {
	frames := id3tag.GetFrames(frameID)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return tf.Text
	}
	return ""
}
