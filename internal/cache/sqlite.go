package cache

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/albumgallery/internal/colorspace"
	"github.com/llehouerou/albumgallery/internal/cover"
	"github.com/llehouerou/albumgallery/internal/db"
)

// SQLiteStore keeps records in a cover_colors table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path. ":memory:" opens a
// private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps an in-memory database alive and serializes writes.
	conn.SetMaxOpenConns(1)

	if err := initSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return &SQLiteStore{db: conn}, nil
}

func initSchema(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS cover_colors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			r INTEGER NOT NULL,
			g INTEGER NOT NULL,
			b INTEGER NOT NULL,
			album TEXT,
			artist TEXT,
			date TEXT,
			genres TEXT,
			added_at INTEGER NOT NULL
		);
	`)
	return err
}

// Load returns all records ordered by insertion.
func (s *SQLiteStore) Load() ([]cover.Item, error) {
	rows, err := s.db.Query(`
		SELECT path, r, g, b, album, artist, date, genres
		FROM cover_colors
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []cover.Item{}
	for rows.Next() {
		var (
			it                          cover.Item
			r, g, b                     int
			album, artist, date, genres sql.NullString
		)
		if err := rows.Scan(&it.Path, &r, &g, &b, &album, &artist, &date, &genres); err != nil {
			return nil, err
		}
		it.Color = colorspace.RGB{R: uint8(r), G: uint8(g), B: uint8(b)} //nolint:gosec // stored from uint8
		it.Tags = cover.Metadata{
			Album:  db.NullStringValue(album),
			Artist: db.NullStringValue(artist),
			Date:   db.NullStringValue(date),
			Genres: db.NullStringValue(genres),
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Merge inserts records for unknown paths in a single transaction.
func (s *SQLiteStore) Merge(items []cover.Item) (int, error) {
	added := 0
	now := time.Now().Unix()

	err := db.WithTx(s.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR IGNORE INTO cover_colors (path, r, g, b, album, artist, date, genres, added_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, it := range items {
			res, err := stmt.Exec(
				it.Path,
				int64(it.Color.R), int64(it.Color.G), int64(it.Color.B),
				db.NullString(it.Tags.Album),
				db.NullString(it.Tags.Artist),
				db.NullString(it.Tags.Date),
				db.NullString(it.Tags.Genres),
				now,
			)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			added += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
