package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"

	"harvest/internal/media"
)

// YtDLP is the Backend driven by the yt-dlp executable.
type YtDLP struct {
	executable string
	ffmpeg     string
	logger     *zap.Logger
}

// NewYtDLP creates a backend running the yt-dlp at executable, or the one
// in PATH when empty. ffmpeg is passed to yt-dlp for merging and conversion.
func NewYtDLP(executable, ffmpeg string, logger *zap.Logger) *YtDLP {
	return &YtDLP{executable: executable, ffmpeg: ffmpeg, logger: logger}
}

func (y *YtDLP) Name() string { return "yt-dlp" }

func (y *YtDLP) command() *ytdlp.Command {
	cmd := ytdlp.New().
		Quiet().
		NoWarnings()
	if y.executable != "" {
		cmd.SetExecutable(y.executable)
	}
	if y.ffmpeg != "" {
		cmd.FFmpegLocation(y.ffmpeg)
	}
	return cmd
}

// Info resolves metadata without downloading.
func (y *YtDLP) Info(ctx context.Context, url string) (*media.Metadata, error) {
	res, err := y.command().
		SkipDownload().
		NoPlaylist().
		DumpJSON().
		Run(ctx, url)
	if err != nil {
		return nil, y.classify(err)
	}

	var v ytdlpVideo
	if err := json.Unmarshal([]byte(res.Stdout), &v); err != nil {
		return nil, fmt.Errorf("%w: decoding yt-dlp output: %w", ErrBackendFailed, err)
	}
	if v.ID == "" {
		return nil, fmt.Errorf("%w: yt-dlp returned no video", ErrBackendFailed)
	}
	return v.metadata(), nil
}

// Download runs yt-dlp with the resolved selection.
func (y *YtDLP) Download(ctx context.Context, url string, sel Selection, target Target) error {
	cmd := y.command().
		NoPlaylist().
		Format(sel.Format).
		Output(filepath.Join(target.Dir, target.Name+".%(ext)s"))

	if sel.MergeFormat != "" {
		cmd.MergeOutputFormat(sel.MergeFormat)
	}
	if sel.ExtractAudio {
		cmd.ExtractAudio().
			AudioFormat(sel.AudioFormat).
			AudioQuality(sel.AudioQuality)
	}

	res, err := cmd.Run(ctx, url)
	if err != nil {
		return y.classify(err)
	}
	y.logger.Debug("yt-dlp finished", zap.Int("exit_code", res.ExitCode))
	return nil
}

// Search runs a flat ytsearch query.
func (y *YtDLP) Search(ctx context.Context, query string, limit int) ([]media.Metadata, error) {
	res, err := y.command().
		SkipDownload().
		FlatPlaylist().
		DumpSingleJSON().
		Run(ctx, fmt.Sprintf("ytsearch%d:%s", limit, query))
	if err != nil {
		return nil, y.classify(err)
	}
	return parseSearchOutput([]byte(res.Stdout))
}

func (y *YtDLP) classify(err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: yt-dlp: %w", ErrBackendUnavailable, err)
	}
	return fmt.Errorf("%w: yt-dlp: %w", ErrBackendFailed, err)
}

// ytdlpVideo is the subset of yt-dlp's info JSON harvest reads.
type ytdlpVideo struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Uploader      string   `json:"uploader"`
	Channel       string   `json:"channel"`
	Duration      float64  `json:"duration"`
	ViewCount     int64    `json:"view_count"`
	AverageRating *float64 `json:"average_rating"`
	UploadDate    string   `json:"upload_date"`
	Thumbnail     string   `json:"thumbnail"`
	Description   string   `json:"description"`
}

type ytdlpPlaylist struct {
	Entries []ytdlpVideo `json:"entries"`
}

func (v ytdlpVideo) metadata() *media.Metadata {
	m := media.NewMetadata(media.VideoID(v.ID))
	m.Title = media.OrUnknown(v.Title)
	m.Author = media.OrUnknown(v.Uploader)
	if m.Author == media.Unknown {
		m.Author = media.OrUnknown(v.Channel)
	}
	m.Duration = media.FormatDuration(int(v.Duration))
	m.ViewCount = media.FormatCount(v.ViewCount)
	if v.AverageRating != nil {
		m.Rating = fmt.Sprintf("%.2f", *v.AverageRating)
	}
	m.PublishDate = formatUploadDate(v.UploadDate)
	if v.Thumbnail != "" {
		m.ThumbnailURL = v.Thumbnail
	}
	if strings.TrimSpace(v.Description) != "" {
		m.Description = v.Description
	}
	m.Source = "yt-dlp"
	return m
}

func parseSearchOutput(out []byte) ([]media.Metadata, error) {
	var pl ytdlpPlaylist
	if err := json.Unmarshal(out, &pl); err != nil {
		return nil, fmt.Errorf("%w: decoding yt-dlp search output: %w", ErrBackendFailed, err)
	}

	results := make([]media.Metadata, 0, len(pl.Entries))
	seen := make(map[string]bool, len(pl.Entries))
	for _, e := range pl.Entries {
		if e.ID == "" || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		results = append(results, *e.metadata())
	}
	return results, nil
}

// formatUploadDate turns yt-dlp's YYYYMMDD into YYYY-MM-DD.
func formatUploadDate(s string) string {
	if len(s) != 8 {
		return media.OrUnknown(s)
	}
	return s[:4] + "-" + s[4:6] + "-" + s[6:]
}
