// Package youtube fetches metadata for, downloads and searches YouTube videos.
// A Backend does the heavy lifting; the public oEmbed endpoint covers
// metadata when the backend cannot.
package youtube

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"harvest/internal/media"
)

var (
	// ErrInvalidURL means no video identifier could be extracted.
	ErrInvalidURL = errors.New("no video ID found in URL")
	// ErrBackendUnavailable means the backend cannot perform the operation at all.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrBackendFailed means the backend ran but did not succeed.
	ErrBackendFailed = errors.New("backend failed")
	// ErrFileNotFound means a download finished but its file could not be located.
	ErrFileNotFound = errors.New("downloaded file not found")
	// ErrUnavailable means no source could provide the requested data.
	ErrUnavailable = errors.New("video unavailable")
	// ErrCancelled means the user declined to continue.
	ErrCancelled = errors.New("cancelled by user")
)

// Patterns are tried in order; the first match wins. The trailing group
// rejects tokens longer than an identifier.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})(?:[^0-9A-Za-z_-]|$)`),
	regexp.MustCompile(`(?:embed/)([0-9A-Za-z_-]{11})(?:[^0-9A-Za-z_-]|$)`),
	regexp.MustCompile(`(?:shorts/)([0-9A-Za-z_-]{11})(?:[^0-9A-Za-z_-]|$)`),
}

// ExtractID returns the video identifier contained in rawURL. Watch, embed,
// short-link and shorts URLs for the same video yield the same identifier.
func ExtractID(rawURL string) (media.VideoID, error) {
	rawURL = strings.TrimSpace(rawURL)
	for _, re := range idPatterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return media.VideoID(m[1]), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
}
