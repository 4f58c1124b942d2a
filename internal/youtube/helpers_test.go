package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"

	"harvest/internal/httputil"
	"harvest/internal/media"
)

// fakeBackend records calls and returns canned results.
type fakeBackend struct {
	info      *media.Metadata
	infoErr   error
	infoCalls int

	downloadErrs []error // Returned by successive attempts; nil entries succeed
	downloads    int
	files        []string // Created in the target dir on success
	lastSel      Selection

	search    []media.Metadata
	searchErr error
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Info(_ context.Context, _ string) (*media.Metadata, error) {
	f.infoCalls++
	return f.info, f.infoErr
}

func (f *fakeBackend) Download(_ context.Context, _ string, sel Selection, target Target) error {
	f.lastSel = sel
	attempt := f.downloads
	f.downloads++
	if attempt < len(f.downloadErrs) && f.downloadErrs[attempt] != nil {
		return f.downloadErrs[attempt]
	}
	for _, name := range f.files {
		if err := os.WriteFile(filepath.Join(target.Dir, name), []byte("data"), 0644); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeBackend) Search(_ context.Context, _ string, _ int) ([]media.Metadata, error) {
	return f.search, f.searchErr
}

// newTLSClient returns a resty client that trusts ts.
func newTLSClient(t *testing.T, ts *httptest.Server) *resty.Client {
	t.Helper()
	client, err := httputil.NewClient(httputil.Options{})
	if err != nil {
		t.Fatal(err)
	}
	client.SetTransport(ts.Client().Transport)
	return client
}

// oembedHandler serves oEmbed responses for the given titles keyed by video ID.
func oembedHandler(t *testing.T, titles map[string]string, calls *int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			*calls++
		}
		id, err := ExtractID(r.URL.Query().Get("url"))
		if err != nil {
			t.Errorf("oembed request without a video URL: %s", r.URL)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		title, ok := titles[string(id)]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"` + title + `","author_name":"Channel ` + string(id) + `","thumbnail_url":"https://i.ytimg.com/vi/` + string(id) + `/hqdefault.jpg"}`))
	}
}
