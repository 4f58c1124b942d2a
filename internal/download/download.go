// Package download writes media streams to disk and post-processes them
// with ffmpeg. ffmpeg is always invoked with explicit argument slices and
// every output path is validated against directory traversal.
package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"harvest/internal/httputil"
)

// OutputPath creates dir if needed and returns the path of name inside it.
// name is used verbatim so callers can predict the file it produces; a name
// that would leave dir is an error.
func OutputPath(dir, name string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving output directory: %w", err)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path, err := httputil.ContainedPath(absDir, name)
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}
	return path, nil
}

// WriteStream copies r into path. A partial file is removed on failure.
func WriteStream(ctx context.Context, r io.Reader, size int64, path string, logger *zap.Logger) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	logger.Info("writing stream",
		zap.String("path", path),
		zap.String("size", sizeLabel(size)))

	n, err := io.Copy(f, &ctxReader{ctx: ctx, r: r})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("writing %s: %w", path, err)
	}

	logger.Debug("stream written", zap.String("path", path), zap.String("bytes", humanize.Bytes(uint64(n))))
	return nil
}

// Merge muxes a video-only and an audio-only file into out without
// re-encoding. The inputs are removed once the merge succeeds.
func Merge(ctx context.Context, ffmpegPath, video, audio, out string) error {
	args := []string{
		"-y",
		"-i", video,
		"-i", audio,
		"-c:v", "copy",
		"-c:a", "copy",
		"-map", "0:v:0",
		"-map", "1:a:0",
		out,
	}
	if err := run(ctx, ffmpegPath, args, out); err != nil {
		return fmt.Errorf("ffmpeg merge failed: %w", err)
	}

	os.Remove(video)
	os.Remove(audio)
	return nil
}

// ExtractAudio converts in to an mp3 at the given bitrate in kbit/s and
// removes in on success.
func ExtractAudio(ctx context.Context, ffmpegPath, in, out string, kbps int) error {
	args := []string{
		"-y",
		"-i", in,
		"-vn",
		"-codec:a", "libmp3lame",
		"-b:a", fmt.Sprintf("%dk", kbps),
		out,
	}
	if err := run(ctx, ffmpegPath, args, out); err != nil {
		return fmt.Errorf("ffmpeg audio extraction failed: %w", err)
	}

	os.Remove(in)
	return nil
}

func run(ctx context.Context, ffmpegPath string, args []string, out string) error {
	if ffmpegPath == "" {
		return fmt.Errorf("ffmpeg not available")
	}

	cmd := exec.CommandContext(ctx, ffmpegPath, append([]string{"-hide_banner", "-loglevel", "error"}, args...)...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		// Clean up partial output on failure
		os.Remove(out)
		return err
	}
	return nil
}

func sizeLabel(size int64) string {
	if size <= 0 {
		return "unknown"
	}
	return humanize.Bytes(uint64(size))
}

// ctxReader stops a copy as soon as ctx is cancelled.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
