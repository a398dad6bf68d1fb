// Package download acquires remote media through yt-dlp, escalating
// through progressively more conservative strategies, and caches results
// on disk keyed by media id.
package download

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/alnah/go-chapterize/internal/execx"
)

const (
	defaultBin             = "yt-dlp"
	defaultProbeTimeout    = 15 * time.Second
	defaultDownloadTimeout = 90 * time.Second
	defaultPlayerClient    = "web"

	// Browser-like headers; some extractors 403 bare clients.
	spoofedUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	spoofedReferer   = "Referer: https://www.youtube.com/"
	spoofedLanguage  = "Accept-Language: en-US,en;q=0.9"
)

var defaultTranscriptLangs = []string{"en", "en-US", "en-GB"}

// httpDoer abstracts the HTTP client for testing.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Acquisition is the result of resolving a URL to a local media file.
type Acquisition struct {
	ID        string
	LocalPath string
	PublicURL string
	Meta      *Metadata
	CacheHit  bool
}

// Downloader probes and downloads remote media into a deterministic
// on-disk layout: <dir>/<id>/<id>.mp4. It is safe for concurrent use.
type Downloader struct {
	bin             string
	ffmpegPath      string
	dir             string
	probeTimeout    time.Duration
	downloadTimeout time.Duration
	cookiesFile     string
	cookiesBrowser  string
	playerClient    string
	transcriptLangs []string
	runner          execx.Runner
	httpClient      httpDoer
	logger          hclog.Logger

	locks sync.Map // media id -> *sync.Mutex
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithBinary sets the yt-dlp binary path.
func WithBinary(bin string) Option {
	return func(d *Downloader) {
		if bin != "" {
			d.bin = bin
		}
	}
}

// WithFFmpegLocation points yt-dlp at a specific ffmpeg for merging.
func WithFFmpegLocation(path string) Option {
	return func(d *Downloader) {
		d.ffmpegPath = path
	}
}

// WithProbeTimeout bounds the metadata extraction call.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(d *Downloader) {
		if timeout > 0 {
			d.probeTimeout = timeout
		}
	}
}

// WithDownloadTimeout bounds each download attempt. Each fallback tier
// gets the full budget.
func WithDownloadTimeout(timeout time.Duration) Option {
	return func(d *Downloader) {
		if timeout > 0 {
			d.downloadTimeout = timeout
		}
	}
}

// WithCookiesFile passes a Netscape cookie jar to yt-dlp for access-gated
// sources. Takes precedence over WithCookiesFromBrowser.
func WithCookiesFile(path string) Option {
	return func(d *Downloader) {
		d.cookiesFile = path
	}
}

// WithCookiesFromBrowser has yt-dlp read cookies straight from a local
// browser profile ("chrome", "firefox", ...).
func WithCookiesFromBrowser(browser string) Option {
	return func(d *Downloader) {
		d.cookiesBrowser = browser
	}
}

// WithPlayerClient overrides the extractor player client. Empty disables
// the override entirely.
func WithPlayerClient(client string) Option {
	return func(d *Downloader) {
		d.playerClient = client
	}
}

// WithTranscriptLanguages sets the preferred subtitle languages, most
// preferred first.
func WithTranscriptLanguages(langs []string) Option {
	return func(d *Downloader) {
		if len(langs) > 0 {
			d.transcriptLangs = langs
		}
	}
}

// WithRunner sets a custom process runner (for testing).
func WithRunner(r execx.Runner) Option {
	return func(d *Downloader) {
		if r != nil {
			d.runner = r
		}
	}
}

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(c httpDoer) Option {
	return func(d *Downloader) {
		if c != nil {
			d.httpClient = c
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l hclog.Logger) Option {
	return func(d *Downloader) {
		if l != nil {
			d.logger = l.Named("download")
		}
	}
}

// New creates a Downloader storing media under dir.
func New(dir string, opts ...Option) (*Downloader, error) {
	if dir == "" {
		return nil, fmt.Errorf("download: media directory is required")
	}
	d := &Downloader{
		bin:             defaultBin,
		dir:             dir,
		probeTimeout:    defaultProbeTimeout,
		downloadTimeout: defaultDownloadTimeout,
		playerClient:    defaultPlayerClient,
		transcriptLangs: defaultTranscriptLangs,
		runner:          execx.NewProcessRunner(),
		httpClient:      &http.Client{Timeout: 30 * time.Second},
		logger:          hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Probe extracts metadata for a single video without downloading.
func (d *Downloader) Probe(ctx context.Context, url string) (*Metadata, error) {
	res := d.runner.Run(ctx, d.bin, []string{"--ignore-config", "--no-playlist", "-J", url}, d.probeTimeout)
	if !res.OK {
		return nil, fmt.Errorf("%w for %s: %s", ErrProbeFailed, url, strings.TrimSpace(res.Stderr))
	}
	var meta Metadata
	if err := json.Unmarshal([]byte(res.Stdout), &meta); err != nil {
		return nil, fmt.Errorf("%w for %s: decode: %v", ErrProbeFailed, url, err)
	}
	return &meta, nil
}

// Acquire resolves url to a local file, downloading it if not cached.
// The id comes from probed metadata, or is synthesized when the probe
// fails so acquisition can still proceed. Calls for the same id are
// serialized, and an existing file short-circuits before any download,
// so acquisition is idempotent.
func (d *Downloader) Acquire(ctx context.Context, url string) (*Acquisition, error) {
	meta, err := d.Probe(ctx, url)
	if err != nil {
		d.logger.Warn("metadata probe failed, synthesizing id", "url", url, "error", err)
		meta = nil
	}

	id := ""
	if meta != nil {
		id = meta.ID
	}
	if id == "" {
		id = fmt.Sprintf("src_%d", time.Now().UnixMilli())
	}

	mu := d.idLock(id)
	mu.Lock()
	defer mu.Unlock()

	outDir := filepath.Join(d.dir, id)
	outFile := filepath.Join(outDir, id+".mp4")
	acq := &Acquisition{
		ID:        id,
		LocalPath: outFile,
		PublicURL: path.Join("/downloads/videos", id, id+".mp4"),
		Meta:      meta,
	}

	if _, err := os.Stat(outFile); err == nil {
		d.logger.Debug("cache hit", "id", id, "path", outFile)
		acq.CacheHit = true
		return acq, nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir %s: %w", outDir, err)
	}

	tiers := d.tiers(outFile, url)
	var failures []string
	for i, args := range tiers {
		d.logger.Debug("download attempt", "id", id, "tier", i+1)
		res := d.runner.Run(ctx, d.bin, args, d.downloadTimeout)
		if res.OK {
			d.logger.Info("download complete", "id", id, "tier", i+1, "path", outFile)
			return acq, nil
		}
		out := strings.TrimSpace(res.Stderr)
		if out == "" {
			out = strings.TrimSpace(res.Stdout)
		}
		failures = append(failures, fmt.Sprintf("tier %d: %s", i+1, out))
		d.logger.Warn("download tier failed", "id", id, "tier", i+1, "exit_code", res.ExitCode)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, &AcquisitionError{URL: url, Tiers: len(tiers), Stderr: strings.Join(failures, "\n")}
}

// commonArgs are the hardening flags shared by every download tier.
func (d *Downloader) commonArgs() []string {
	args := []string{
		"--ignore-config",
		"--no-playlist",
		"-R", "3",
		"--fragment-retries", "10",
		"--force-ipv4",
		"--geo-bypass",
		"--add-header", "User-Agent: " + spoofedUserAgent,
		"--add-header", spoofedReferer,
		"--add-header", spoofedLanguage,
	}
	switch {
	case d.cookiesFile != "":
		args = append(args, "--cookies", d.cookiesFile)
	case d.cookiesBrowser != "":
		args = append(args, "--cookies-from-browser", d.cookiesBrowser)
	}
	if d.playerClient != "" {
		args = append(args, "--extractor-args", "youtube:player_client="+d.playerClient)
	}
	return args
}

// tiers returns the escalating download strategies:
//  1. progressive or merged mp4,
//  2. best video+audio merge regardless of container,
//  3. HLS through ffmpeg on a single connection, which dodges 403s on
//     individual fragments.
func (d *Downloader) tiers(outFile, url string) [][]string {
	common := d.commonArgs()
	finish := func(args []string) []string {
		if d.ffmpegPath != "" {
			args = append(args, "--ffmpeg-location", d.ffmpegPath)
		}
		return append(args, "-o", outFile, url)
	}

	tier1 := append(append([]string{}, common...),
		"-N", "4",
		"-f", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
		"--merge-output-format", "mp4",
		"--force-overwrites",
	)
	tier2 := append(append([]string{}, common...),
		"-N", "4",
		"-f", "bv*+ba/best",
		"--merge-output-format", "mp4",
		"--force-overwrites",
	)
	tier3 := append(append([]string{}, common...),
		"-N", "1",
		"--hls-prefer-ffmpeg",
		"-f", "b[protocol^=m3u8]/bv*[protocol^=m3u8]+ba/best",
		"--merge-output-format", "mp4",
		"--force-overwrites",
	)
	return [][]string{finish(tier1), finish(tier2), finish(tier3)}
}

func (d *Downloader) idLock(id string) *sync.Mutex {
	v, _ := d.locks.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}
