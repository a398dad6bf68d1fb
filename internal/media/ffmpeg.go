// Package media wraps ffmpeg and ffprobe for audio extraction, duration
// probing and segment clipping.
package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/alnah/go-chapterize/internal/execx"
)

const (
	defaultBin      = "ffmpeg"
	defaultProbeBin = "ffprobe"

	// One transcode should never run this long; a stuck ffmpeg otherwise
	// blocks the pipeline forever.
	defaultTimeout = 10 * time.Minute
)

// ErrExtractFailed indicates audio extraction exited non-zero. Fatal: the
// analysis stages cannot run without usable audio.
var ErrExtractFailed = errors.New("audio extraction failed")

// ErrZeroDuration indicates a clip request whose bounds collapse to
// nothing after flooring and clamping.
var ErrZeroDuration = errors.New("clip duration is zero")

// FFmpeg invokes the ffmpeg and ffprobe binaries through a Runner.
type FFmpeg struct {
	bin      string
	probeBin string
	timeout  time.Duration
	runner   execx.Runner
	logger   hclog.Logger
}

// Option configures an FFmpeg.
type Option func(*FFmpeg)

// WithBinary sets the ffmpeg binary path.
func WithBinary(bin string) Option {
	return func(f *FFmpeg) {
		if bin != "" {
			f.bin = bin
		}
	}
}

// WithProbeBinary sets the ffprobe binary path.
func WithProbeBinary(bin string) Option {
	return func(f *FFmpeg) {
		if bin != "" {
			f.probeBin = bin
		}
	}
}

// WithTimeout bounds each invocation.
func WithTimeout(timeout time.Duration) Option {
	return func(f *FFmpeg) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

// WithRunner sets a custom process runner (for testing).
func WithRunner(r execx.Runner) Option {
	return func(f *FFmpeg) {
		if r != nil {
			f.runner = r
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l hclog.Logger) Option {
	return func(f *FFmpeg) {
		if l != nil {
			f.logger = l.Named("media")
		}
	}
}

// New creates an FFmpeg wrapper.
func New(opts ...Option) *FFmpeg {
	f := &FFmpeg{
		bin:      defaultBin,
		probeBin: defaultProbeBin,
		timeout:  defaultTimeout,
		runner:   execx.NewProcessRunner(),
		logger:   hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ExtractAudio transcodes videoPath to 16kHz mono FLAC next to the
// source, swapping the extension. 16kHz mono is what speech models
// expect; anything richer only inflates the upload.
func (f *FFmpeg) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	audioPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".flac"
	args := []string{
		"-i", videoPath,
		"-y",
		"-vn",
		"-acodec", "flac",
		"-ar", "16000",
		"-ac", "1",
		audioPath,
	}
	res := f.runner.Run(ctx, f.bin, args, f.timeout)
	if !res.OK {
		return "", fmt.Errorf("%w for %s: %s", ErrExtractFailed, videoPath, strings.TrimSpace(res.Stderr))
	}
	f.logger.Debug("audio extracted", "video", videoPath, "audio", audioPath)
	return audioPath, nil
}

// Duration returns the container duration of path in seconds.
func (f *FFmpeg) Duration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	res := f.runner.Run(ctx, f.probeBin, args, f.timeout)
	if !res.OK {
		return 0, fmt.Errorf("probe duration of %s: %s", path, strings.TrimSpace(res.Stderr))
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(res.Stdout), 64)
	if err != nil {
		return 0, fmt.Errorf("probe duration of %s: parse %q: %w", path, strings.TrimSpace(res.Stdout), err)
	}
	return dur, nil
}

// ClipResult reports a finished clip. Thumbnail is false when thumbnail
// generation was requested but failed; that is not an error.
type ClipResult struct {
	ClipPath      string
	ThumbnailPath string
	Thumbnail     bool
}

// Clip re-encodes [startSec, endSec) of src into outPath as a
// fast-starting mp4 with source metadata stripped. thumbPath, when
// non-empty, receives a single frame from a third of the way in.
// Negative bounds are clamped to zero; an empty range is rejected.
func (f *FFmpeg) Clip(ctx context.Context, src string, startSec, endSec int, outPath, thumbPath string) (*ClipResult, error) {
	start := max(0, startSec)
	end := max(0, endSec)
	duration := end - start
	if duration <= 0 {
		return nil, fmt.Errorf("%w: %d-%d", ErrZeroDuration, startSec, endSec)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, fmt.Errorf("create clip dir: %w", err)
	}

	args := []string{
		"-y",
		"-ss", strconv.Itoa(start),
		"-t", strconv.Itoa(duration),
		"-i", src,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-c:a", "aac",
		"-movflags", "+faststart",
		"-map_metadata", "-1",
		outPath,
	}
	res := f.runner.Run(ctx, f.bin, args, f.timeout)
	if !res.OK {
		return nil, fmt.Errorf("clip %s [%d-%d]: %s", src, start, end, strings.TrimSpace(res.Stderr))
	}

	result := &ClipResult{ClipPath: outPath}
	if thumbPath != "" {
		result.ThumbnailPath = thumbPath
		result.Thumbnail = f.thumbnail(ctx, src, start+duration/3, thumbPath)
	}
	return result, nil
}

func (f *FFmpeg) thumbnail(ctx context.Context, src string, atSec int, outPath string) bool {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		f.logger.Warn("thumbnail dir", "error", err)
		return false
	}
	args := []string{
		"-y",
		"-ss", strconv.Itoa(max(0, atSec)),
		"-i", src,
		"-frames:v", "1",
		outPath,
	}
	res := f.runner.Run(ctx, f.bin, args, f.timeout)
	if !res.OK {
		f.logger.Warn("thumbnail failed", "src", src, "stderr", strings.TrimSpace(res.Stderr))
	}
	return res.OK
}
