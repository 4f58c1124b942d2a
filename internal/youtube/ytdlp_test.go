package youtube

import (
	"encoding/json"
	"errors"
	"os/exec"
	"testing"

	"go.uber.org/zap/zaptest"

	"harvest/internal/media"
)

func TestYtDLPVideoMetadata(t *testing.T) {
	raw := `{
		"id": "dQw4w9WgXcQ",
		"title": "Never Gonna Give You Up",
		"uploader": "Rick Astley",
		"duration": 212,
		"view_count": 1500000000,
		"average_rating": null,
		"upload_date": "20091025",
		"thumbnail": "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
		"description": "The official video"
	}`

	var v ytdlpVideo
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatal(err)
	}
	m := v.metadata()

	checks := map[string][2]string{
		"Title":        {m.Title, "Never Gonna Give You Up"},
		"Author":       {m.Author, "Rick Astley"},
		"Duration":     {m.Duration, "3:32"},
		"ViewCount":    {m.ViewCount, "1500000000"},
		"Rating":       {m.Rating, media.Unknown},
		"PublishDate":  {m.PublishDate, "2009-10-25"},
		"ThumbnailURL": {m.ThumbnailURL, "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg"},
		"Description":  {m.Description, "The official video"},
		"Source":       {m.Source, "yt-dlp"},
	}
	for field, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", field, c[0], c[1])
		}
	}
}

func TestYtDLPVideoMissingFields(t *testing.T) {
	rating := 4.5
	v := ytdlpVideo{ID: "abcdefghijk", Channel: "Some Channel", AverageRating: &rating}
	m := v.metadata()

	if m.Title != media.Unknown || m.Duration != media.Unknown || m.ViewCount != media.Unknown {
		t.Errorf("missing fields should be unknown: %+v", m)
	}
	if m.Author != "Some Channel" {
		t.Errorf("Author = %q, want channel fallback", m.Author)
	}
	if m.Rating != "4.50" {
		t.Errorf("Rating = %q", m.Rating)
	}
	if m.Description != media.NoDescription {
		t.Errorf("Description = %q", m.Description)
	}
}

func TestParseSearchOutput(t *testing.T) {
	out := `{"_type":"playlist","entries":[
		{"id":"aaaaaaaaaaa","title":"First","channel":"A","duration":45},
		{"id":"","title":"Broken"},
		{"id":"bbbbbbbbbbb","title":"Second","uploader":"B","view_count":10},
		{"id":"aaaaaaaaaaa","title":"First again"}
	]}`

	got, err := parseSearchOutput([]byte(out))
	if err != nil {
		t.Fatalf("parseSearchOutput() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if got[0].Title != "First" || got[0].Duration != "0:45" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].VideoID != "bbbbbbbbbbb" || got[1].ViewCount != "10" {
		t.Errorf("second = %+v", got[1])
	}
}

func TestParseSearchOutputInvalid(t *testing.T) {
	if _, err := parseSearchOutput([]byte("not json")); !errors.Is(err, ErrBackendFailed) {
		t.Errorf("error = %v, want ErrBackendFailed", err)
	}
}

func TestFormatUploadDate(t *testing.T) {
	tests := map[string]string{
		"20240131": "2024-01-31",
		"":         media.Unknown,
		"2024":     "2024",
	}
	for in, want := range tests {
		if got := formatUploadDate(in); got != want {
			t.Errorf("formatUploadDate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestYtDLPClassify(t *testing.T) {
	y := NewYtDLP("", "", zaptest.NewLogger(t))

	if err := y.classify(exec.ErrNotFound); !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("classify(ErrNotFound) = %v, want ErrBackendUnavailable", err)
	}
	if err := y.classify(errors.New("exit status 1")); !errors.Is(err, ErrBackendFailed) {
		t.Errorf("classify(exit) = %v, want ErrBackendFailed", err)
	}
}
