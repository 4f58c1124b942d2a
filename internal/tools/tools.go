// Package tools detects the optional external programs harvest can use.
// Detection happens once at startup; the result is passed to components as
// plain values so tests can simulate any combination.
package tools

import (
	"context"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// Capabilities records which optional tools are usable in this run.
type Capabilities struct {
	// HasMuxer is true when ffmpeg can merge separate video and audio streams.
	HasMuxer bool
	// HasExtractor is true when the yt-dlp executable is available.
	HasExtractor bool

	FFmpegPath string
	YtDLPPath  string
}

const probeTimeout = 10 * time.Second

// Detect probes for ffmpeg and yt-dlp. Missing tools are logged as warnings
// once and downgrade the feature set for the rest of the run.
func Detect(ctx context.Context, ffmpeg, ytdlp string, logger *zap.Logger) Capabilities {
	caps := Capabilities{}

	if path, ok := probe(ctx, ffmpeg, "-version"); ok {
		caps.HasMuxer = true
		caps.FFmpegPath = path
	} else {
		logger.Warn("ffmpeg not found; video and audio will not be merged and audio will not be converted to mp3",
			zap.String("looked_for", ffmpeg))
	}

	if path, ok := probe(ctx, ytdlp, "--version"); ok {
		caps.HasExtractor = true
		caps.YtDLPPath = path
	} else {
		logger.Warn("yt-dlp not found; metadata falls back to the oEmbed endpoint",
			zap.String("looked_for", ytdlp))
	}

	return caps
}

// probe resolves name in PATH and checks that it runs successfully with arg.
func probe(ctx context.Context, name, arg string) (string, bool) {
	if name == "" {
		return "", false
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := exec.CommandContext(ctx, path, arg).Run(); err != nil {
		return "", false
	}
	return path, true
}
