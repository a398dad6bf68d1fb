package ytapi_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alnah/go-chapterize/internal/ytapi"
)

// ----------------------------------------------------------------------------

// TestExtractVideoID - the common YouTube URL shapes all resolve.
func TestExtractVideoID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch with extras", "https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"live", "https://www.youtube.com/live/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"mobile", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ytapi.ExtractVideoID(tt.url)
			if err != nil {
				t.Fatalf("ExtractVideoID(%q) returned error: %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

// TestExtractVideoID_Invalid - non-video URLs are rejected.
func TestExtractVideoID_Invalid(t *testing.T) {
	t.Parallel()

	for _, u := range []string{
		"https://vimeo.com/12345",
		"https://www.youtube.com/",
		"https://www.youtube.com/channel/UCabc",
		"not a url at all ://",
	} {
		if _, err := ytapi.ExtractVideoID(u); !errors.Is(err, ytapi.ErrBadVideoURL) {
			t.Errorf("ExtractVideoID(%q) error = %v, want ErrBadVideoURL", u, err)
		}
	}
}

// TestParseISO8601Duration - PT#H#M#S strings convert to seconds.
func TestParseISO8601Duration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"PT15M33S", 933},
		{"PT1H2M3S", 3723},
		{"PT45S", 45},
		{"PT2H", 7200},
		{"PT0S", 0},
	}

	for _, tt := range tests {
		got, err := ytapi.ParseISO8601Duration(tt.in)
		if err != nil {
			t.Fatalf("ParseISO8601Duration(%q) returned error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseISO8601Duration(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "15m", "P1D", "PT1X"} {
		if _, err := ytapi.ParseISO8601Duration(bad); err == nil {
			t.Errorf("ParseISO8601Duration(%q) expected error, got none", bad)
		}
	}
}

// ----------------------------------------------------------------------------

func videosJSON(description, duration string) string {
	return fmt.Sprintf(`{"items":[{"snippet":{"description":%q},"contentDetails":{"duration":%q}}]}`,
		description, duration)
}

// TestChapters - description timestamps become chapters bounded by the
// next entry and the video duration.
func TestChapters(t *testing.T) {
	t.Parallel()

	desc := "My video!\n0:00 Intro\n1:30 Main part\n10:00 Outro\nthanks for watching"
	var gotPath, gotID, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotID = r.URL.Query().Get("id")
		gotKey = r.URL.Query().Get("key")
		fmt.Fprint(w, videosJSON(desc, "PT15M"))
	}))
	defer srv.Close()

	c := ytapi.New("secret", ytapi.WithBaseURL(srv.URL))

	chapters, err := c.Chapters(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Chapters returned error: %v", err)
	}

	if gotPath != "/videos" {
		t.Errorf("request path = %q, want /videos", gotPath)
	}
	if gotID != "dQw4w9WgXcQ" {
		t.Errorf("request id = %q, want dQw4w9WgXcQ", gotID)
	}
	if gotKey != "secret" {
		t.Errorf("request key = %q, want secret", gotKey)
	}

	want := []ytapi.Chapter{
		{Title: "Intro", Start: 0, End: 90},
		{Title: "Main part", Start: 90, End: 600},
		{Title: "Outro", Start: 600, End: 900},
	}
	if len(chapters) != len(want) {
		t.Fatalf("got %d chapters, want %d: %+v", len(chapters), len(want), chapters)
	}
	for i, w := range want {
		if chapters[i] != w {
			t.Errorf("chapter %d = %+v, want %+v", i, chapters[i], w)
		}
	}
}

// TestChapters_NoKey - a keyless client quietly returns nothing.
func TestChapters_NoKey(t *testing.T) {
	t.Parallel()

	c := ytapi.New("")

	chapters, err := c.Chapters(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Chapters returned error: %v", err)
	}
	if chapters != nil {
		t.Errorf("expected nil chapters without a key, got %+v", chapters)
	}
}

// TestChapters_VideoNotFound - an empty items list is not an error.
func TestChapters_VideoNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer srv.Close()

	c := ytapi.New("secret", ytapi.WithBaseURL(srv.URL))

	chapters, err := c.Chapters(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Chapters returned error: %v", err)
	}
	if len(chapters) != 0 {
		t.Errorf("expected no chapters, got %+v", chapters)
	}
}

// TestChapters_ServerError - non-200 responses surface as errors.
func TestChapters_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c := ytapi.New("secret", ytapi.WithBaseURL(srv.URL))

	if _, err := c.Chapters(context.Background(), "https://youtu.be/dQw4w9WgXcQ"); err == nil {
		t.Fatal("expected error for 403 response, got none")
	}
}

// TestChapters_NoTimestampsInDescription - a plain description yields
// no chapters.
func TestChapters_NoTimestampsInDescription(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, videosJSON("just a regular description, no chapter list", "PT10M"))
	}))
	defer srv.Close()

	c := ytapi.New("secret", ytapi.WithBaseURL(srv.URL))

	chapters, err := c.Chapters(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Chapters returned error: %v", err)
	}
	if len(chapters) != 0 {
		t.Errorf("expected no chapters, got %+v", chapters)
	}
}
