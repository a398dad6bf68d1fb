package cli

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/alnah/go-chapterize/internal/config"
	"github.com/alnah/go-chapterize/internal/download"
	"github.com/alnah/go-chapterize/internal/lang"
)

const sampleVTT = `WEBVTT

00:00:01.000 --> 00:00:04.000
Hello there, welcome to the course.

00:00:04.000 --> 00:00:08.000
Today we cover <b>interfaces</b>.`

// captionedDownloader serves a VTT track over httptest and returns a
// downloader whose probe metadata points at it.
func captionedDownloader(t *testing.T, te *testEnv) *download.Downloader {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, sampleVTT)
	}))
	t.Cleanup(srv.Close)

	meta := fmt.Sprintf(`{"id":"abc123","title":"Go Course","subtitles":`+
		`{"en":[{"url":"%s/track.vtt","ext":"vtt"}]}}`, srv.URL)
	dl, err := download.New(te.cfg.DataDir,
		download.WithRunner(ytdlpRunner(t, meta)),
		download.WithHTTPClient(srv.Client()),
		download.WithLogger(hclog.NewNullLogger()),
	)
	if err != nil {
		t.Fatalf("building captioned downloader: %v", err)
	}
	return dl
}

// ---------------------------------------------------------------------------
// Tests for TranscriptCmd
// ---------------------------------------------------------------------------

func TestTranscriptCmd(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.env.NewDownloader = func(config.Config, hclog.Logger) (*download.Downloader, error) {
		return captionedDownloader(t, te), nil
	}

	err := execute(t, TranscriptCmd(te.env), "https://www.youtube.com/watch?v=abc123")
	if err != nil {
		t.Fatalf("transcript returned error: %v", err)
	}

	out := te.stdout.String()
	if !strings.Contains(out, "Hello there, welcome to the course.") {
		t.Errorf("missing caption text, got %q", out)
	}
	if strings.Contains(out, "<b>") {
		t.Errorf("markup not stripped, got %q", out)
	}
	if strings.Contains(out, "-->") {
		t.Errorf("cue timings not stripped, got %q", out)
	}
}

func TestTranscriptCmd_LangsOverrideConfig(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	var gotLangs []string
	te.env.NewDownloader = func(cfg config.Config, _ hclog.Logger) (*download.Downloader, error) {
		gotLangs = cfg.CaptionLanguages
		return captionedDownloader(t, te), nil
	}

	err := execute(t, TranscriptCmd(te.env),
		"https://www.youtube.com/watch?v=abc123", "--langs", "pt-br, en")
	if err != nil {
		t.Fatalf("transcript returned error: %v", err)
	}
	if len(gotLangs) != 2 || gotLangs[0] != "pt-BR" || gotLangs[1] != "en" {
		t.Errorf("caption languages = %v, want [pt-BR en]", gotLangs)
	}
}

func TestTranscriptCmd_InvalidLang(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)

	err := execute(t, TranscriptCmd(te.env),
		"https://www.youtube.com/watch?v=abc123", "--langs", "klingon")
	if !errors.Is(err, lang.ErrInvalid) {
		t.Fatalf("error = %v, want lang.ErrInvalid", err)
	}
}
