package cli

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/alnah/go-chapterize/internal/analyze"
	"github.com/alnah/go-chapterize/internal/config"
	"github.com/alnah/go-chapterize/internal/download"
	"github.com/alnah/go-chapterize/internal/media"
	"github.com/alnah/go-chapterize/internal/store"
	"github.com/alnah/go-chapterize/internal/tools"
	"github.com/alnah/go-chapterize/internal/ytapi"
)

// Env holds injectable dependencies for CLI commands. It is the central
// injection point for testing commands in isolation.
//
// All fields have production defaults via DefaultEnv(). Tests override
// specific fields with fakes. Env must not be nil when passed to command
// constructors.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// Configuration
	LoadConfig func(cfgFile string) (config.Config, error)
	NewLogger  func(cfg config.Config, w io.Writer) hclog.Logger

	// Factories for domain objects
	NewDownloader  func(cfg config.Config, l hclog.Logger) (*download.Downloader, error)
	NewMedia       func(cfg config.Config, l hclog.Logger) (*media.FFmpeg, error)
	NewAnalyzer    func(cfg config.Config, l hclog.Logger) *analyze.Client
	NewTranscriber func(cfg config.Config, l hclog.Logger) *analyze.Transcriber
	NewYouTube     func(cfg config.Config, l hclog.Logger) *ytapi.Client
	OpenStore      func(cfg config.Config, l hclog.Logger) (*store.Store, error)
}

// DefaultEnv creates an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,

		LoadConfig: config.Load,
		NewLogger:  newLogger,

		NewDownloader:  newDownloader,
		NewMedia:       newMedia,
		NewAnalyzer:    newAnalyzer,
		NewTranscriber: newTranscriber,
		NewYouTube:     newYouTube,
		OpenStore:      openStore,
	}
}

func newLogger(cfg config.Config, w io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "chapterize",
		Level:  hclog.LevelFromString(cfg.LogLevel),
		Output: w,
	})
}

func newDownloader(cfg config.Config, l hclog.Logger) (*download.Downloader, error) {
	ytdlp, err := tools.NewResolver("yt-dlp", tools.WithLogger(l)).Resolve(cfg.YTDLPPath)
	if err != nil {
		return nil, err
	}

	opts := []download.Option{
		download.WithBinary(ytdlp),
		download.WithProbeTimeout(cfg.ProbeTimeout),
		download.WithDownloadTimeout(cfg.DownloadTimeout),
		download.WithCookiesFile(cfg.CookiesFile),
		download.WithCookiesFromBrowser(cfg.CookiesFromBrowser),
		download.WithPlayerClient(cfg.PlayerClient),
		download.WithLogger(l),
	}
	if len(cfg.CaptionLanguages) > 0 {
		opts = append(opts, download.WithTranscriptLanguages(cfg.CaptionLanguages))
	}
	// yt-dlp merges formats through ffmpeg when it can find one.
	if ffmpeg, err := tools.NewResolver("ffmpeg", tools.WithLogger(l)).Resolve(cfg.FFmpegPath); err == nil {
		opts = append(opts, download.WithFFmpegLocation(ffmpeg))
	}
	return download.New(cfg.DataDir, opts...)
}

func newMedia(cfg config.Config, l hclog.Logger) (*media.FFmpeg, error) {
	ffmpeg, err := tools.NewResolver("ffmpeg", tools.WithLogger(l)).Resolve(cfg.FFmpegPath)
	if err != nil {
		return nil, err
	}
	ffprobe, err := tools.NewResolver("ffprobe", tools.WithLogger(l)).Resolve(cfg.FFprobePath)
	if err != nil {
		return nil, err
	}
	return media.New(
		media.WithBinary(ffmpeg),
		media.WithProbeBinary(ffprobe),
		media.WithLogger(l),
	), nil
}

func newAnalyzer(cfg config.Config, l hclog.Logger) *analyze.Client {
	return analyze.NewClient(cfg.GeminiAPIKey,
		analyze.WithModel(cfg.GeminiModel),
		analyze.WithClientLogger(l),
	)
}

func newTranscriber(cfg config.Config, l hclog.Logger) *analyze.Transcriber {
	return analyze.NewTranscriber(cfg.OpenAIAPIKey,
		analyze.WithWhisperModel(cfg.WhisperModel),
		analyze.WithTranscriberLogger(l),
	)
}

func newYouTube(cfg config.Config, l hclog.Logger) *ytapi.Client {
	return ytapi.New(cfg.YouTubeAPIKey, ytapi.WithLogger(l))
}

func openStore(cfg config.Config, l hclog.Logger) (*store.Store, error) {
	return store.Open(cfg.DatabasePath, store.WithLogger(l))
}
