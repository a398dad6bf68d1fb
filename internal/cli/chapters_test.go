package cli

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/alnah/go-chapterize/internal/config"
	"github.com/alnah/go-chapterize/internal/ytapi"
)

// ---------------------------------------------------------------------------
// Tests for ChaptersCmd
// ---------------------------------------------------------------------------

func TestChaptersCmd(t *testing.T) {
	t.Parallel()

	body := map[string]any{
		"items": []map[string]any{{
			"snippet": map[string]any{
				"title":       "Go Course",
				"description": "0:00 Intro\n1:30 Setup\n10:00 Outro",
			},
			"contentDetails": map[string]any{"duration": "PT15M"},
		}},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if err := writeJSON(w, body); err != nil {
			t.Errorf("encoding stub response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	te := newTestEnv(t)
	te.env.NewYouTube = func(config.Config, hclog.Logger) *ytapi.Client {
		return ytapi.New("yt-key", ytapi.WithBaseURL(srv.URL))
	}

	err := execute(t, ChaptersCmd(te.env), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("chapters returned error: %v", err)
	}

	out := te.stdout.String()
	for _, want := range []string{"0:00-1:30", "Intro", "1:30-10:00", "Setup", "10:00-15:00", "Outro"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q, got %q", want, out)
		}
	}
}

func TestChaptersCmd_BadURL(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.env.NewYouTube = func(config.Config, hclog.Logger) *ytapi.Client {
		return ytapi.New("yt-key")
	}

	err := execute(t, ChaptersCmd(te.env), "https://vimeo.com/12345")
	if !errors.Is(err, ytapi.ErrBadVideoURL) {
		t.Fatalf("error = %v, want ErrBadVideoURL", err)
	}
}

func TestChaptersCmd_NoChapters(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.env.NewYouTube = func(config.Config, hclog.Logger) *ytapi.Client {
		// No API key makes the lookup a silent no-op.
		return ytapi.New("")
	}

	err := execute(t, ChaptersCmd(te.env), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("chapters returned error: %v", err)
	}
	if !strings.Contains(te.stderr.String(), "no chapters found") {
		t.Errorf("missing empty note, got %q", te.stderr.String())
	}
}
