// Package pipeline sequences acquisition, transcoding, analysis and
// chapter building into one processing flow, with bounded-concurrency
// clip rendering on the result.
package pipeline

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/alnah/go-chapterize/internal/analyze"
	"github.com/alnah/go-chapterize/internal/download"
	"github.com/alnah/go-chapterize/internal/media"
	"github.com/alnah/go-chapterize/internal/store"
)

// sourceClient is the slice of the downloader the pipeline needs.
// *download.Downloader implements it implicitly.
type sourceClient interface {
	Acquire(ctx context.Context, url string) (*download.Acquisition, error)
	Transcript(ctx context.Context, url string) (string, error)
}

// audioClipper is the slice of the media toolkit the pipeline needs.
// *media.FFmpeg implements it implicitly.
type audioClipper interface {
	ExtractAudio(ctx context.Context, videoPath string) (string, error)
	Duration(ctx context.Context, path string) (float64, error)
	Clip(ctx context.Context, src string, startSec, endSec int, outPath, thumbPath string) (*media.ClipResult, error)
}

// topicAnalyzer is the slice of the analysis client the pipeline needs.
// *analyze.Client implements it implicitly.
type topicAnalyzer interface {
	Topics(ctx context.Context, audioPath string, durationSec int, mode analyze.Mode, customQuery string) (string, error)
	SuggestSegments(ctx context.Context, url, transcript, customPrompt string) ([]analyze.Segment, error)
}

// Compile-time interface compliance checks.
var (
	_ sourceClient  = (*download.Downloader)(nil)
	_ audioClipper  = (*media.FFmpeg)(nil)
	_ topicAnalyzer = (*analyze.Client)(nil)
)

const defaultClipParallelism = 2

// AnalysisError reports a failure in the model analysis stage. It
// unwraps to the underlying apierr sentinel so callers can classify it.
type AnalysisError struct {
	Stage string
	Err   error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis stage %s: %v", e.Stage, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// SourceKind discriminates the Source union.
type SourceKind int

const (
	// SourceRemote is a URL to acquire through the downloader.
	SourceRemote SourceKind = iota
	// SourceLocal is a file already on disk.
	SourceLocal
)

// Source is either a remote URL or a local media file.
type Source struct {
	kind SourceKind
	url  string
	path string
	mime string
}

// RemoteURL builds a Source for a video URL.
func RemoteURL(url string) Source {
	return Source{kind: SourceRemote, url: url}
}

// LocalFile builds a Source for a file already on disk.
func LocalFile(path, mime string) Source {
	return Source{kind: SourceLocal, path: path, mime: mime}
}

// Kind reports which arm of the union this Source is.
func (s Source) Kind() SourceKind { return s.kind }

// Pipeline runs sources through acquisition, audio extraction, topic
// analysis and chapter building.
type Pipeline struct {
	source          sourceClient
	media           audioClipper
	analyzer        topicAnalyzer
	store           *store.Store
	clipParallelism int
	logger          hclog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStore enables persistence of processed courses.
func WithStore(s *store.Store) Option {
	return func(p *Pipeline) {
		p.store = s
	}
}

// WithClipParallelism bounds concurrent clip renders.
func WithClipParallelism(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.clipParallelism = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l hclog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l.Named("pipeline")
		}
	}
}

// withSourceClient swaps the downloader (for testing).
func withSourceClient(c sourceClient) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.source = c
		}
	}
}

// withAudioClipper swaps the media toolkit (for testing).
func withAudioClipper(c audioClipper) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.media = c
		}
	}
}

// withTopicAnalyzer swaps the analysis client (for testing).
func withTopicAnalyzer(a topicAnalyzer) Option {
	return func(p *Pipeline) {
		if a != nil {
			p.analyzer = a
		}
	}
}

// New assembles a Pipeline from its stage clients.
func New(dl *download.Downloader, ff *media.FFmpeg, an *analyze.Client, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:          dl,
		media:           ff,
		analyzer:        an,
		clipParallelism: defaultClipParallelism,
		logger:          hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}
