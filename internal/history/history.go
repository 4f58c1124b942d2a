// Package history records completed downloads in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	_ "modernc.org/sqlite"

	"harvest/internal/media"
)

const schema = `
CREATE TABLE IF NOT EXISTS downloads (
	id         TEXT PRIMARY KEY,
	video_id   TEXT NOT NULL,
	title      TEXT NOT NULL,
	quality    TEXT NOT NULL,
	path       TEXT NOT NULL,
	backend    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS downloads_created_at ON downloads (created_at);
`

// Store is the download history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	// A single connection keeps :memory: databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add inserts rec, replacing any record with the same ID.
func (s *Store) Add(ctx context.Context, rec media.DownloadRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO downloads (id, video_id, title, quality, path, backend, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.VideoID), rec.Title, rec.Quality, rec.Path, rec.Backend, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// List returns up to limit records, newest first. A limit of zero or less
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]media.DownloadRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, video_id, title, quality, path, backend, created_at
		 FROM downloads ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	defer rows.Close()

	var records []media.DownloadRecord
	for rows.Next() {
		var rec media.DownloadRecord
		var videoID string
		if err := rows.Scan(&rec.ID, &videoID, &rec.Title, &rec.Quality, &rec.Path, &rec.Backend, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("reading history: %w", err)
		}
		rec.VideoID = media.VideoID(videoID)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return records, nil
}

// Remove deletes the record with the given ID. Removing a missing record
// is not an error.
func (s *Store) Remove(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM downloads WHERE id = ?`, id); err != nil {
		return fmt.Errorf("removing history entry: %w", err)
	}
	return nil
}

// Clear deletes every record.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM downloads`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// FormatForDisplay creates one display row per record: when, title, quality
// and path.
func FormatForDisplay(records []media.DownloadRecord, now time.Time) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		when := humanize.RelTime(time.Unix(r.CreatedAt, 0), now, "ago", "from now")
		rows = append(rows, []string{when, r.Title, r.Quality, r.Path})
	}
	return rows
}
