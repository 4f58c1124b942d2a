package youtube

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"harvest/internal/httputil"
	"harvest/internal/media"
	"harvest/internal/tools"
)

const (
	downloadAttempts = 3
	retryStep        = 2 * time.Second
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Recorder persists completed downloads.
type Recorder interface {
	Add(ctx context.Context, rec media.DownloadRecord) error
}

// DownloadOptions control where a download is written.
type DownloadOptions struct {
	Dir  string
	Name string // Overrides the video title as file name
}

// Downloader fetches videos through a Backend and recovers the produced file.
type Downloader struct {
	backend  Backend
	caps     tools.Capabilities
	confirm  Confirmer
	recorder Recorder
	logger   *zap.Logger

	retryStep time.Duration
}

// NewDownloader creates a Downloader. confirm is consulted before downloads
// that would leave unmerged streams behind.
func NewDownloader(backend Backend, caps tools.Capabilities, confirm Confirmer, logger *zap.Logger) *Downloader {
	return &Downloader{
		backend:   backend,
		caps:      caps,
		confirm:   confirm,
		logger:    logger,
		retryStep: retryStep,
	}
}

// WithRecorder makes d record successful downloads in r.
func (d *Downloader) WithRecorder(r Recorder) *Downloader {
	d.recorder = r
	return d
}

// Download fetches the video at rawURL in quality q and returns the produced file.
func (d *Downloader) Download(ctx context.Context, rawURL string, q media.Quality, opts DownloadOptions) (*media.DownloadResult, error) {
	id, err := ExtractID(rawURL)
	if err != nil {
		return nil, err
	}
	if d.backend == nil {
		return nil, fmt.Errorf("%w: no download backend configured", ErrBackendUnavailable)
	}

	sel := SelectFormat(q, d.caps)

	if NeedsConfirmation(q, d.caps) {
		d.logger.Warn("ffmpeg missing; video and audio will be saved as separate files")
		ok, err := d.confirmSplit(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrCancelled
		}
	}

	info, err := d.backend.Info(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot resolve %s: %w", ErrUnavailable, id, err)
	}
	if info == nil {
		return nil, fmt.Errorf("%w: cannot resolve %s", ErrUnavailable, id)
	}

	name := httputil.SanitizeTitle(info.Title)
	if opts.Name != "" {
		name = httputil.SanitizeFilename(opts.Name)
	}

	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving output directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	d.logger.Info("downloading",
		zap.String("id", string(id)),
		zap.String("title", info.Title),
		zap.String("quality", q.String()),
		zap.String("format", sel.Format),
		zap.String("backend", d.backend.Name()))

	if err := d.downloadWithRetry(ctx, rawURL, sel, Target{Dir: dir, Name: name}); err != nil {
		return nil, err
	}

	result, err := d.locate(dir, name, sel)
	if err != nil {
		return nil, err
	}
	result.Title = info.Title
	result.Quality = q

	d.record(ctx, id, result)
	return result, nil
}

func (d *Downloader) confirmSplit(ctx context.Context) (bool, error) {
	if d.confirm == nil {
		return false, nil
	}
	ok, err := d.confirm.Confirm(ctx, "Video and audio will be downloaded as separate files. Continue?")
	if err != nil {
		return false, fmt.Errorf("asking for confirmation: %w", err)
	}
	return ok, nil
}

// downloadWithRetry retries transient backend failures with a linearly
// growing wait. Other errors end the loop immediately.
func (d *Downloader) downloadWithRetry(ctx context.Context, rawURL string, sel Selection, target Target) error {
	attempt := 0
	op := func() error {
		attempt++
		err := d.backend.Download(ctx, rawURL, sel, target)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrBackendFailed) {
			return backoff.Permanent(err)
		}
		d.logger.Warn("download attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", downloadAttempts),
			zap.Error(err))
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(&linearBackOff{step: d.retryStep}, downloadAttempts-1), ctx)
	if err := backoff.Retry(op, b); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// locate finds the file a download produced.
func (d *Downloader) locate(dir, name string, sel Selection) (*media.DownloadResult, error) {
	files, err := listCandidates(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %w", ErrFileNotFound, dir, err)
	}

	if NeedsConfirmation(sel.Quality, d.caps) {
		video, audio := splitFiles(dir, name, files)
		if video != "" {
			return &media.DownloadResult{Path: video, Companion: audio}, nil
		}
		if audio != "" {
			return &media.DownloadResult{Path: audio}, nil
		}
	}

	expected := filepath.Join(dir, name+"."+ExpectedExt(sel))
	if _, err := os.Stat(expected); err == nil {
		return &media.DownloadResult{Path: expected}, nil
	}

	if found, ok := RankCandidates(name, files); ok {
		d.logger.Debug("expected file missing, using closest match",
			zap.String("expected", expected),
			zap.String("found", found))
		return &media.DownloadResult{Path: filepath.Join(dir, found)}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrFileNotFound, expected)
}

func (d *Downloader) record(ctx context.Context, id media.VideoID, res *media.DownloadResult) {
	if d.recorder == nil {
		return
	}
	rec := media.DownloadRecord{
		ID:        uuid.NewString(),
		VideoID:   id,
		Title:     res.Title,
		Quality:   res.Quality.String(),
		Path:      res.Path,
		Backend:   d.backend.Name(),
		CreatedAt: time.Now().Unix(),
	}
	if err := d.recorder.Add(ctx, rec); err != nil {
		d.logger.Warn("recording download history failed", zap.Error(err))
	}
}

// linearBackOff waits step, 2*step, 3*step, ... between attempts.
type linearBackOff struct {
	step time.Duration
	n    int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.n++
	return time.Duration(b.n) * b.step
}

func (b *linearBackOff) Reset() { b.n = 0 }
