// Package media defines shared types for the harvest application.
package media

import (
	"fmt"
	"strconv"
	"strings"
)

// Unknown is the sentinel stored in metadata fields the source did not provide.
const Unknown = "未知"

// NoDescription is the placeholder used when a video has no description.
const NoDescription = "無描述"

// VideoID is an 11-character YouTube video identifier.
type VideoID string

// WatchURL returns the canonical watch page URL for the video.
func (id VideoID) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + string(id)
}

// ThumbnailURL returns the high quality default thumbnail for the video.
func (id VideoID) ThumbnailURL() string {
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", id)
}

// Metadata describes a single video. Fields the backend did not return
// hold Unknown rather than being empty.
type Metadata struct {
	VideoID      VideoID `json:"id"`
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	Duration     string  `json:"duration"`
	ViewCount    string  `json:"view_count"`
	Rating       string  `json:"rating"`
	PublishDate  string  `json:"publish_date"`
	ThumbnailURL string  `json:"thumbnail_url"`
	Description  string  `json:"description,omitempty"`
	URL          string  `json:"url"`
	Source       string  `json:"source"` // Backend that produced the record
}

// NewMetadata returns a record for id with every optional field set to Unknown.
func NewMetadata(id VideoID) *Metadata {
	return &Metadata{
		VideoID:      id,
		Title:        Unknown,
		Author:       Unknown,
		Duration:     Unknown,
		ViewCount:    Unknown,
		Rating:       Unknown,
		PublishDate:  Unknown,
		ThumbnailURL: id.ThumbnailURL(),
		Description:  NoDescription,
		URL:          id.WatchURL(),
	}
}

// Fields returns the displayable fields in a stable order. The description
// is left out since it is usually long.
func (m *Metadata) Fields() [][2]string {
	return [][2]string{
		{"標題", m.Title},
		{"影片長度", m.Duration},
		{"觀看次數", m.ViewCount},
		{"評分", m.Rating},
		{"發布日期", m.PublishDate},
		{"作者", m.Author},
		{"影片ID", string(m.VideoID)},
		{"縮圖網址", m.ThumbnailURL},
	}
}

// OrUnknown returns s, or Unknown when s is blank.
func OrUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unknown
	}
	return s
}

// FormatDuration renders seconds as H:MM:SS, or M:SS under an hour.
// Zero or negative input yields Unknown.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return Unknown
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// FormatCount renders a count, or Unknown when it is not positive.
func FormatCount(n int64) string {
	if n <= 0 {
		return Unknown
	}
	return strconv.FormatInt(n, 10)
}

// QualityKind enumerates the supported download quality presets.
type QualityKind int

const (
	QualityBest QualityKind = iota
	QualityWorst
	QualityAudio
	QualityHeight // Explicit height ceiling, e.g. 720p
	QualityRaw    // Unrecognised selector passed straight to the backend
)

// Quality is a resolved download quality request.
type Quality struct {
	Kind   QualityKind
	Height int    // Only for QualityHeight
	Raw    string // Only for QualityRaw
}

// ParseQuality parses "best", "worst", "audio", "720p"/"720" or any other
// backend-specific selector.
func ParseQuality(s string) Quality {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "best", "highest":
		return Quality{Kind: QualityBest}
	case "worst", "lowest":
		return Quality{Kind: QualityWorst}
	case "audio":
		return Quality{Kind: QualityAudio}
	}

	if h, err := strconv.Atoi(strings.TrimSuffix(s, "p")); err == nil && h > 0 {
		return Quality{Kind: QualityHeight, Height: h}
	}
	return Quality{Kind: QualityRaw, Raw: s}
}

func (q Quality) String() string {
	switch q.Kind {
	case QualityBest:
		return "best"
	case QualityWorst:
		return "worst"
	case QualityAudio:
		return "audio"
	case QualityHeight:
		return fmt.Sprintf("%dp", q.Height)
	default:
		return q.Raw
	}
}

// IsAudio reports whether only the audio track was requested.
func (q Quality) IsAudio() bool {
	return q.Kind == QualityAudio
}

// MenuPresets lists the interactive download choices in menu order.
var MenuPresets = []struct {
	Label   string
	Quality string
}{
	{"最佳品質 (影片+音訊)", "best"},
	{"僅下載音訊", "audio"},
	{"720p (影片+音訊)", "720p"},
	{"480p (影片+音訊)", "480p"},
	{"360p (影片+音訊)", "360p"},
}

// QualityForChoice maps a 1-based menu choice to a quality preset.
// Unknown choices fall back to best.
func QualityForChoice(choice string) Quality {
	n, err := strconv.Atoi(strings.TrimSpace(choice))
	if err != nil || n < 1 || n > len(MenuPresets) {
		return Quality{Kind: QualityBest}
	}
	return ParseQuality(MenuPresets[n-1].Quality)
}

// DownloadResult describes a file produced by a download.
type DownloadResult struct {
	Path      string // Main artifact
	Companion string // Separate audio file when streams could not be merged
	Title     string
	Quality   Quality
}

// DownloadRecord is a persisted entry in the download history.
type DownloadRecord struct {
	ID        string  `json:"id"`
	VideoID   VideoID `json:"video_id"`
	Title     string  `json:"title"`
	Quality   string  `json:"quality"`
	Path      string  `json:"path"`
	Backend   string  `json:"backend"`
	CreatedAt int64   `json:"created_at"` // Unix seconds
}
