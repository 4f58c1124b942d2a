package youtube

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-resty/resty/v2"

	"harvest/internal/httputil"
	"harvest/internal/media"
)

// DefaultOEmbedEndpoint is YouTube's public oEmbed endpoint.
const DefaultOEmbedEndpoint = "https://www.youtube.com/oembed"

const oembedSource = "oembed"

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// EmbedClient looks up basic metadata through the oEmbed endpoint. It needs
// no external tools but only knows the title, author and thumbnail.
type EmbedClient struct {
	client   *resty.Client
	endpoint string
}

// NewEmbedClient returns a client for endpoint, or the public endpoint when empty.
func NewEmbedClient(client *resty.Client, endpoint string) *EmbedClient {
	if endpoint == "" {
		endpoint = DefaultOEmbedEndpoint
	}
	return &EmbedClient{client: client, endpoint: endpoint}
}

// Lookup returns metadata for id. Fields oEmbed does not provide are Unknown.
func (e *EmbedClient) Lookup(ctx context.Context, id media.VideoID) (*media.Metadata, error) {
	q := url.Values{}
	q.Set("url", id.WatchURL())
	q.Set("format", "json")

	var resp oembedResponse
	if err := httputil.GetJSON(ctx, e.client, e.endpoint+"?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("oembed lookup for %s: %w", id, err)
	}

	m := media.NewMetadata(id)
	m.Title = media.OrUnknown(resp.Title)
	m.Author = media.OrUnknown(resp.AuthorName)
	if resp.ThumbnailURL != "" {
		m.ThumbnailURL = resp.ThumbnailURL
	}
	m.Source = oembedSource
	return m, nil
}
