package youtube

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"harvest/internal/httputil"
	"harvest/internal/media"
)

// DefaultResultsURL is the search results page scraped when the backend
// cannot search.
const DefaultResultsURL = "https://www.youtube.com/results"

const lookupInterval = 500 * time.Millisecond

var watchIDPattern = regexp.MustCompile(`watch\?v=(\S{11})`)

// Searcher finds videos by free-text query.
type Searcher struct {
	backend    Backend // nil when no backend is usable
	client     *resty.Client
	embed      *EmbedClient
	resultsURL string
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewSearcher creates a Searcher. backend may be nil.
func NewSearcher(backend Backend, client *resty.Client, embed *EmbedClient, logger *zap.Logger) *Searcher {
	return &Searcher{
		backend:    backend,
		client:     client,
		embed:      embed,
		resultsURL: DefaultResultsURL,
		limiter:    rate.NewLimiter(rate.Every(lookupInterval), 1),
		logger:     logger,
	}
}

// Search returns up to limit videos for query. Backend results are returned
// as is; otherwise the results page is scraped and each video resolved
// through oEmbed. The two sources are never merged.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]media.Metadata, error) {
	if limit <= 0 {
		return nil, nil
	}

	if s.backend != nil {
		results, err := s.backend.Search(ctx, query, limit)
		if err == nil && len(results) > 0 {
			if len(results) > limit {
				results = results[:limit]
			}
			return results, nil
		}
		s.logger.Warn("backend search failed, scraping results page",
			zap.String("backend", s.backend.Name()),
			zap.String("query", query),
			zap.Error(err))
	}

	return s.scrape(ctx, query, limit)
}

func (s *Searcher) scrape(ctx context.Context, query string, limit int) ([]media.Metadata, error) {
	page := s.resultsURL + "?search_query=" + httputil.EncodeSearchQuery(query)
	body, err := httputil.GetHTML(ctx, s.client, page)
	if err != nil {
		return nil, fmt.Errorf("%w: searching %q: %w", ErrUnavailable, query, err)
	}

	var ids []media.VideoID
	for _, m := range watchIDPattern.FindAllSubmatch(body, -1) {
		ids = append(ids, media.VideoID(m[1]))
	}
	ids = UniqueIDs(ids, limit)

	results := make([]media.Metadata, 0, len(ids))
	for _, id := range ids {
		if err := s.limiter.Wait(ctx); err != nil {
			return results, err
		}
		m, err := s.embed.Lookup(ctx, id)
		if err != nil {
			s.logger.Debug("skipping search result", zap.String("id", string(id)), zap.Error(err))
			continue
		}
		results = append(results, *m)
	}
	return results, nil
}

// UniqueIDs removes duplicates keeping first occurrences in order, and caps
// the result at limit.
func UniqueIDs(ids []media.VideoID, limit int) []media.VideoID {
	if limit < 0 {
		limit = 0
	}
	seen := make(map[media.VideoID]bool, len(ids))
	out := make([]media.VideoID, 0, limit)
	for _, id := range ids {
		if len(out) >= limit {
			break
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
