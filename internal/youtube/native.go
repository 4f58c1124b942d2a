package youtube

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	yt "github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"harvest/internal/download"
	"harvest/internal/media"
)

// Native is the Backend that talks to YouTube directly, without yt-dlp.
// It cannot search. Separate streams are merged and audio converted only
// when ffmpeg is available.
type Native struct {
	client *yt.Client
	ffmpeg string
	logger *zap.Logger
}

// NewNative creates a native backend using httpClient for all requests.
func NewNative(httpClient *http.Client, ffmpeg string, logger *zap.Logger) *Native {
	return &Native{
		client: &yt.Client{HTTPClient: httpClient},
		ffmpeg: ffmpeg,
		logger: logger,
	}
}

func (n *Native) Name() string { return "native" }

func (n *Native) Info(ctx context.Context, url string) (*media.Metadata, error) {
	v, err := n.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendFailed, err)
	}
	return nativeMetadata(v), nil
}

func (n *Native) Search(context.Context, string, int) ([]media.Metadata, error) {
	return nil, fmt.Errorf("%w: native backend cannot search", ErrBackendUnavailable)
}

// Download picks streams for sel.Quality and writes them under target.
func (n *Native) Download(ctx context.Context, url string, sel Selection, target Target) error {
	v, err := n.client.GetVideoContext(ctx, url)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBackendFailed, err)
	}

	if sel.Quality.IsAudio() {
		return n.downloadAudio(ctx, v, sel, target)
	}

	if sel.MergeFormat != "" {
		video, audio := pickAdaptive(v.Formats, sel.Quality)
		if video != nil && audio != nil {
			return n.downloadMerged(ctx, v, video, audio, target)
		}
	}

	f := pickProgressive(v.Formats, sel.Quality)
	if f == nil {
		return fmt.Errorf("%w: no playable stream for %s", ErrBackendFailed, v.ID)
	}
	_, err = n.fetch(ctx, v, f, target, target.Name+"."+extension(f))
	return err
}

func (n *Native) downloadAudio(ctx context.Context, v *yt.Video, sel Selection, target Target) error {
	f := pickAudio(v.Formats)
	if f == nil {
		return fmt.Errorf("%w: no audio stream for %s", ErrBackendFailed, v.ID)
	}

	path, err := n.fetch(ctx, v, f, target, target.Name+"."+extension(f))
	if err != nil || !sel.ExtractAudio {
		return err
	}

	out := filepath.Join(target.Dir, target.Name+"."+sel.AudioFormat)
	return download.ExtractAudio(ctx, n.ffmpeg, path, out, audioBitrate)
}

func (n *Native) downloadMerged(ctx context.Context, v *yt.Video, video, audio *yt.Format, target Target) error {
	vpath, err := n.fetch(ctx, v, video, target, fmt.Sprintf("%s.f%d.%s", target.Name, video.ItagNo, extension(video)))
	if err != nil {
		return err
	}
	apath, err := n.fetch(ctx, v, audio, target, fmt.Sprintf("%s.f%d.%s", target.Name, audio.ItagNo, extension(audio)))
	if err != nil {
		return err
	}

	out := filepath.Join(target.Dir, target.Name+"."+mergeContainer)
	return download.Merge(ctx, n.ffmpeg, vpath, apath, out)
}

func (n *Native) fetch(ctx context.Context, v *yt.Video, f *yt.Format, target Target, name string) (string, error) {
	path, err := download.OutputPath(target.Dir, name)
	if err != nil {
		return "", err
	}

	stream, size, err := n.client.GetStreamContext(ctx, v, f)
	if err != nil {
		return "", fmt.Errorf("%w: opening stream %d: %w", ErrBackendFailed, f.ItagNo, err)
	}
	defer stream.Close()

	if err := download.WriteStream(ctx, stream, size, path, n.logger); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBackendFailed, err)
	}
	return path, nil
}

func nativeMetadata(v *yt.Video) *media.Metadata {
	m := media.NewMetadata(media.VideoID(v.ID))
	m.Title = media.OrUnknown(v.Title)
	m.Author = media.OrUnknown(v.Author)
	m.Duration = media.FormatDuration(int(v.Duration.Seconds()))
	m.ViewCount = media.FormatCount(int64(v.Views))
	if !v.PublishDate.IsZero() {
		m.PublishDate = v.PublishDate.Format("2006-01-02")
	}
	if len(v.Thumbnails) > 0 {
		m.ThumbnailURL = v.Thumbnails[len(v.Thumbnails)-1].URL
	}
	if strings.TrimSpace(v.Description) != "" {
		m.Description = v.Description
	}
	m.Source = "native"
	return m
}

// Stream selection. Formats carrying both video and audio are progressive;
// the rest are adaptive single-track streams.

func isVideo(f yt.Format) bool { return f.Height > 0 || strings.HasPrefix(f.MimeType, "video/") }
func isAudio(f yt.Format) bool { return f.AudioChannels > 0 }

func pickProgressive(formats yt.FormatList, q media.Quality) *yt.Format {
	return pickVideo(formats.Select(func(f yt.Format) bool { return isVideo(f) && isAudio(f) }), q)
}

func pickAdaptive(formats yt.FormatList, q media.Quality) (video, audio *yt.Format) {
	video = pickVideo(formats.Select(func(f yt.Format) bool { return isVideo(f) && !isAudio(f) }), q)
	if q.Kind == media.QualityWorst {
		audio = lowestAudio(formats)
	} else {
		audio = pickAudio(formats)
	}
	return video, audio
}

// pickVideo chooses by height: highest, lowest, or highest not above the
// requested ceiling. A ceiling nothing satisfies falls back to highest.
func pickVideo(formats yt.FormatList, q media.Quality) *yt.Format {
	var best *yt.Format
	for i := range formats {
		f := &formats[i]
		switch q.Kind {
		case media.QualityWorst:
			if best == nil || f.Height < best.Height {
				best = f
			}
		case media.QualityHeight:
			if f.Height <= q.Height && (best == nil || f.Height > best.Height) {
				best = f
			}
		default:
			if best == nil || f.Height > best.Height {
				best = f
			}
		}
	}
	if best == nil && q.Kind == media.QualityHeight {
		return pickVideo(formats, media.Quality{Kind: media.QualityBest})
	}
	return best
}

func pickAudio(formats yt.FormatList) *yt.Format {
	var best *yt.Format
	for i := range formats {
		f := &formats[i]
		if !isAudio(*f) || isVideo(*f) {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	return best
}

func lowestAudio(formats yt.FormatList) *yt.Format {
	var low *yt.Format
	for i := range formats {
		f := &formats[i]
		if !isAudio(*f) || isVideo(*f) {
			continue
		}
		if low == nil || f.Bitrate < low.Bitrate {
			low = f
		}
	}
	return low
}

// extension maps a stream MIME type to a file extension.
func extension(f *yt.Format) string {
	mime := f.MimeType
	switch {
	case strings.HasPrefix(mime, "audio/mp4"):
		return "m4a"
	case strings.Contains(mime, "webm"):
		return "webm"
	case strings.Contains(mime, "3gpp"):
		return "3gp"
	default:
		return "mp4"
	}
}
