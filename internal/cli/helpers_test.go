package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/alnah/go-chapterize/internal/analyze"
	"github.com/alnah/go-chapterize/internal/config"
	"github.com/alnah/go-chapterize/internal/download"
	"github.com/alnah/go-chapterize/internal/execx"
	"github.com/alnah/go-chapterize/internal/media"
	"github.com/alnah/go-chapterize/internal/store"
	"github.com/alnah/go-chapterize/internal/ytapi"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var _ io.Writer = (*syncBuffer)(nil)

func writeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

// ---------------------------------------------------------------------------
// testEnv - a fully faked Env with real temp-dir config
// ---------------------------------------------------------------------------

type testEnv struct {
	env    *Env
	stdout *syncBuffer
	stderr *syncBuffer
	cfg    config.Config
}

// newTestEnv builds an Env whose factories are safe stubs: config points
// into a temp dir, the logger is silent, the store is a real temp
// database, and the process-spawning factories fail unless a test
// replaces them.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	te := &testEnv{
		stdout: &syncBuffer{},
		stderr: &syncBuffer{},
		cfg: config.Config{
			DataDir:         filepath.Join(dir, "videos"),
			ClipDir:         filepath.Join(dir, "clips"),
			DatabasePath:    filepath.Join(dir, "courses.db"),
			GeminiModel:     "gemini-1.5-flash-latest",
			ClipParallelism: 2,
			LogLevel:        "error",
		},
	}
	te.env = &Env{
		Stdout: te.stdout,
		Stderr: te.stderr,
		Getenv: func(string) string { return "" },

		LoadConfig: func(string) (config.Config, error) { return te.cfg, nil },
		NewLogger:  func(config.Config, io.Writer) hclog.Logger { return hclog.NewNullLogger() },

		NewDownloader: func(config.Config, hclog.Logger) (*download.Downloader, error) {
			return nil, errors.New("downloader not wired in this test")
		},
		NewMedia: func(config.Config, hclog.Logger) (*media.FFmpeg, error) {
			return nil, errors.New("media not wired in this test")
		},
		NewAnalyzer: func(config.Config, hclog.Logger) *analyze.Client {
			return analyze.NewClient("")
		},
		NewTranscriber: func(config.Config, hclog.Logger) *analyze.Transcriber {
			return analyze.NewTranscriber("")
		},
		NewYouTube: func(config.Config, hclog.Logger) *ytapi.Client {
			return ytapi.New("")
		},
		OpenStore: func(cfg config.Config, _ hclog.Logger) (*store.Store, error) {
			return store.Open(cfg.DatabasePath)
		},
	}
	return te
}

// execute runs a command with args, discarding cobra's own output
// streams so assertions only see what commands write through Env.
func execute(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.ExecuteContext(context.Background())
}

// ---------------------------------------------------------------------------
// Fake yt-dlp runner
// ---------------------------------------------------------------------------

// ytdlpRunner emulates yt-dlp: any -J invocation returns metaJSON, any
// download invocation writes a small file at the -o target and succeeds.
func ytdlpRunner(t *testing.T, metaJSON string) execx.RunnerFunc {
	t.Helper()
	return func(_ context.Context, _ string, args []string, _ time.Duration) execx.Result {
		for _, a := range args {
			if a == "-J" {
				return execx.Result{OK: true, Stdout: metaJSON}
			}
		}
		for i, a := range args {
			if a == "-o" && i+1 < len(args) {
				if err := os.WriteFile(args[i+1], []byte("video-bytes"), 0o644); err != nil {
					t.Errorf("writing fake download output: %v", err)
					return execx.Result{ExitCode: 1, Stderr: err.Error()}
				}
				return execx.Result{OK: true}
			}
		}
		return execx.Result{ExitCode: 1, Stderr: "unexpected yt-dlp invocation"}
	}
}

// fakeDownloader builds a real Downloader over ytdlpRunner.
func fakeDownloader(t *testing.T, te *testEnv, metaJSON string) *download.Downloader {
	t.Helper()
	dl, err := download.New(te.cfg.DataDir,
		download.WithRunner(ytdlpRunner(t, metaJSON)),
		download.WithLogger(hclog.NewNullLogger()),
	)
	if err != nil {
		t.Fatalf("building fake downloader: %v", err)
	}
	return dl
}
