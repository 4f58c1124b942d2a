package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"

	"harvest/internal/media"
)

func TestFetcherInvalidURLMakesNoCalls(t *testing.T) {
	calls := 0
	ts := httptest.NewTLSServer(oembedHandler(t, nil, &calls))
	defer ts.Close()

	backend := &fakeBackend{}
	f := NewFetcher(backend, NewEmbedClient(newTLSClient(t, ts), ts.URL+"/oembed"), zaptest.NewLogger(t))

	_, err := f.Info(context.Background(), "https://example.com/nothing")
	if !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("Info() error = %v, want ErrInvalidURL", err)
	}
	if backend.infoCalls != 0 || calls != 0 {
		t.Errorf("expected no lookups, got backend=%d oembed=%d", backend.infoCalls, calls)
	}
}

func TestFetcherPrefersBackend(t *testing.T) {
	calls := 0
	ts := httptest.NewTLSServer(oembedHandler(t, nil, &calls))
	defer ts.Close()

	want := media.NewMetadata("dQw4w9WgXcQ")
	want.Title = "From backend"
	backend := &fakeBackend{info: want}
	f := NewFetcher(backend, NewEmbedClient(newTLSClient(t, ts), ts.URL+"/oembed"), zaptest.NewLogger(t))

	got, err := f.Info(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Info() error: %v", err)
	}
	if got.Title != "From backend" {
		t.Errorf("Title = %q", got.Title)
	}
	if calls != 0 {
		t.Errorf("oembed should not be called, got %d calls", calls)
	}
}

func TestFetcherFallsBackToOEmbed(t *testing.T) {
	ts := httptest.NewTLSServer(oembedHandler(t, map[string]string{"dQw4w9WgXcQ": "Never Gonna Give You Up"}, nil))
	defer ts.Close()
	embed := NewEmbedClient(newTLSClient(t, ts), ts.URL+"/oembed")

	tests := []struct {
		name    string
		backend Backend
	}{
		{"backend error", &fakeBackend{infoErr: ErrBackendFailed}},
		{"backend returns nothing", &fakeBackend{}},
		{"no backend", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFetcher(tt.backend, embed, zaptest.NewLogger(t))
			got, err := f.Info(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
			if err != nil {
				t.Fatalf("Info() error: %v", err)
			}
			if got.Title != "Never Gonna Give You Up" {
				t.Errorf("Title = %q", got.Title)
			}
			if got.Author != "Channel dQw4w9WgXcQ" {
				t.Errorf("Author = %q", got.Author)
			}
			if got.Duration != media.Unknown || got.ViewCount != media.Unknown {
				t.Errorf("fields oEmbed lacks should be unknown, got %q / %q", got.Duration, got.ViewCount)
			}
			if got.Source != "oembed" {
				t.Errorf("Source = %q", got.Source)
			}
		})
	}
}

func TestFetcherBothSourcesFail(t *testing.T) {
	ts := httptest.NewTLSServer(http.NotFoundHandler())
	defer ts.Close()

	f := NewFetcher(&fakeBackend{infoErr: ErrBackendFailed}, NewEmbedClient(newTLSClient(t, ts), ts.URL+"/oembed"), zaptest.NewLogger(t))

	_, err := f.Info(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Info() error = %v, want ErrUnavailable", err)
	}
	if !errors.Is(err, ErrBackendFailed) {
		t.Errorf("error should keep the backend cause: %v", err)
	}
}
