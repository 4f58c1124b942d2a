package youtube

import (
	"errors"
	"testing"

	"harvest/internal/media"
)

func TestExtractID(t *testing.T) {
	const want = media.VideoID("dQw4w9WgXcQ")

	tests := []struct {
		name string
		url  string
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"watch with params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s&list=PL123"},
		{"params before v", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ"},
		{"short link with query", "https://youtu.be/dQw4w9WgXcQ?si=abc"},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ"},
		{"mobile", "https://m.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"surrounding space", "  https://youtu.be/dQw4w9WgXcQ \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractID(tt.url)
			if err != nil {
				t.Fatalf("ExtractID(%q) error: %v", tt.url, err)
			}
			if got != want {
				t.Errorf("ExtractID(%q) = %q, want %q", tt.url, got, want)
			}
		})
	}
}

func TestExtractIDInvalid(t *testing.T) {
	tests := []string{
		"",
		"not a url",
		"https://www.youtube.com/",
		"https://www.youtube.com/watch?v=short",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQX",
		"https://youtu.be/dQw4w9WgXcQXYZ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ12?feature=share",
		"https://example.com/abc",
	}

	for _, url := range tests {
		t.Run(url, func(t *testing.T) {
			_, err := ExtractID(url)
			if !errors.Is(err, ErrInvalidURL) {
				t.Errorf("ExtractID(%q) error = %v, want ErrInvalidURL", url, err)
			}
		})
	}
}

// A 12th identifier character makes the whole token unreadable rather than
// silently yielding a different video.
func TestExtractIDRejectsOverlongToken(t *testing.T) {
	for _, url := range []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQX",
		"https://youtu.be/dQw4w9WgXcQ_",
	} {
		if id, err := ExtractID(url); err == nil {
			t.Errorf("ExtractID(%q) = %q, want ErrInvalidURL", url, id)
		}
	}
}
