package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/alnah/go-chapterize/internal/config"
	"github.com/alnah/go-chapterize/internal/download"
)

// ---------------------------------------------------------------------------
// Tests for PlaylistCmd
// ---------------------------------------------------------------------------

func TestPlaylistCmd(t *testing.T) {
	t.Parallel()

	playlistJSON := `{"id":"PL42","title":"Go From Scratch","entries":[` +
		`{"id":"v1","title":"Lesson One","webpage_url":"https://www.youtube.com/watch?v=v1"},` +
		`{"id":"v2","title":"Lesson Two","webpage_url":"https://www.youtube.com/watch?v=v2"}]}`

	te := newTestEnv(t)
	te.env.NewDownloader = func(config.Config, hclog.Logger) (*download.Downloader, error) {
		return fakeDownloader(t, te, playlistJSON), nil
	}

	err := execute(t, PlaylistCmd(te.env), "https://www.youtube.com/playlist?list=PL42")
	if err != nil {
		t.Fatalf("playlist returned error: %v", err)
	}

	out := te.stdout.String()
	if !strings.Contains(out, "Go From Scratch (2 videos)") {
		t.Errorf("missing playlist header, got %q", out)
	}
	if !strings.Contains(out, "Lesson One") || !strings.Contains(out, "Lesson Two") {
		t.Errorf("missing entries, got %q", out)
	}
	if !strings.Contains(out, "https://www.youtube.com/watch?v=v2") {
		t.Errorf("missing entry URL, got %q", out)
	}
}

func TestPlaylistCmd_NotAPlaylist(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)

	err := execute(t, PlaylistCmd(te.env), "https://www.youtube.com/watch?v=abc123")
	if !errors.Is(err, ErrNotAPlaylist) {
		t.Fatalf("error = %v, want ErrNotAPlaylist", err)
	}
}
