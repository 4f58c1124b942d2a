package youtube

import (
	"context"

	"harvest/internal/media"
)

// Backend is a media extraction engine.
type Backend interface {
	// Name identifies the backend in logs and history records.
	Name() string
	// Info resolves metadata for a video URL.
	Info(ctx context.Context, url string) (*media.Metadata, error)
	// Download fetches url into target according to sel.
	Download(ctx context.Context, url string, sel Selection, target Target) error
	// Search returns up to limit results for query.
	Search(ctx context.Context, query string, limit int) ([]media.Metadata, error)
}

// Selection is a resolved download request.
type Selection struct {
	Quality media.Quality

	// Format is a yt-dlp style format selector.
	Format       string
	MergeFormat  string // Container to merge into, empty when there is no muxer
	ExtractAudio bool
	AudioFormat  string
	AudioQuality string
}

// Target is where a download should be written.
type Target struct {
	Dir  string
	Name string // Sanitized base name without extension
}
