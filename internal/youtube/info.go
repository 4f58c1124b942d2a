package youtube

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"harvest/internal/media"
)

// Fetcher resolves video metadata, preferring the backend and falling back
// to oEmbed.
type Fetcher struct {
	backend Backend // nil when no backend is usable
	embed   *EmbedClient
	logger  *zap.Logger
}

// NewFetcher creates a Fetcher. backend may be nil.
func NewFetcher(backend Backend, embed *EmbedClient, logger *zap.Logger) *Fetcher {
	return &Fetcher{backend: backend, embed: embed, logger: logger}
}

// Info returns metadata for the video at rawURL. Malformed URLs fail with
// ErrInvalidURL before any network call.
func (f *Fetcher) Info(ctx context.Context, rawURL string) (*media.Metadata, error) {
	id, err := ExtractID(rawURL)
	if err != nil {
		return nil, err
	}

	var primaryErr error
	if f.backend != nil {
		m, err := f.backend.Info(ctx, rawURL)
		switch {
		case err != nil:
			primaryErr = err
		case m == nil:
			primaryErr = fmt.Errorf("%w: %s returned no data", ErrBackendFailed, f.backend.Name())
		default:
			return m, nil
		}
		f.logger.Warn("backend metadata lookup failed, trying oEmbed",
			zap.String("backend", f.backend.Name()),
			zap.String("id", string(id)),
			zap.Error(primaryErr))
	} else {
		primaryErr = ErrBackendUnavailable
	}

	m, err := f.embed.Lookup(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w; %w", ErrUnavailable, id, primaryErr, err)
	}
	return m, nil
}
