package analyze_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-chapterize/internal/analyze"
	"github.com/alnah/go-chapterize/internal/apierr"
)

func generateBody(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

// ---------------------------------------------------------------------------
// TestUploadFile - Raw upload protocol headers and URI extraction
// ---------------------------------------------------------------------------

func TestUploadFile(t *testing.T) {
	t.Parallel()

	audio := filepath.Join(t.TempDir(), "abc.flac")
	if err := os.WriteFile(audio, []byte("flac-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	var gotReq *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		fmt.Fprint(w, `{"file": {"uri": "files/uploaded-123"}}`)
	}))
	t.Cleanup(srv.Close)

	c := analyze.NewClient("test-key", analyze.WithBaseURL(srv.URL))

	uri, err := c.UploadFile(context.Background(), audio, "audio/flac")

	if err != nil {
		t.Fatalf("UploadFile returned error: %v", err)
	}
	if uri != "files/uploaded-123" {
		t.Errorf("uri = %q", uri)
	}
	if !strings.HasPrefix(gotReq.URL.Path, "/upload/v1beta/files") {
		t.Errorf("upload path = %q", gotReq.URL.Path)
	}
	if gotReq.URL.Query().Get("uploadType") != "media" {
		t.Errorf("uploadType = %q, want media", gotReq.URL.Query().Get("uploadType"))
	}
	if gotReq.Header.Get("X-Goog-Upload-Protocol") != "raw" {
		t.Errorf("upload protocol header = %q, want raw", gotReq.Header.Get("X-Goog-Upload-Protocol"))
	}
	if gotReq.Header.Get("X-Goog-Upload-File-Name") != "abc.flac" {
		t.Errorf("file name header = %q", gotReq.Header.Get("X-Goog-Upload-File-Name"))
	}
	if gotReq.Header.Get("Content-Type") != "audio/flac" {
		t.Errorf("content type = %q", gotReq.Header.Get("Content-Type"))
	}
}

func TestUploadFile_MissingURI(t *testing.T) {
	t.Parallel()

	audio := filepath.Join(t.TempDir(), "abc.flac")
	if err := os.WriteFile(audio, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"file": {}}`)
	}))
	t.Cleanup(srv.Close)

	c := analyze.NewClient("test-key", analyze.WithBaseURL(srv.URL))

	if _, err := c.UploadFile(context.Background(), audio, "audio/flac"); err == nil {
		t.Error("UploadFile accepted a response without a file uri")
	}
}

// ---------------------------------------------------------------------------
// TestGenerateContent - Happy path and status classification
// ---------------------------------------------------------------------------

func TestGenerateContent(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, generateBody("model says hi"))
	}))
	t.Cleanup(srv.Close)

	c := analyze.NewClient("test-key",
		analyze.WithBaseURL(srv.URL),
		analyze.WithModel("gemini-1.5-flash-latest"),
	)

	got, err := c.GenerateContent(context.Background(), analyze.GenerateRequest{
		Contents: []analyze.Content{{Parts: []analyze.Part{{Text: "hello"}}}},
	})

	if err != nil {
		t.Fatalf("GenerateContent returned error: %v", err)
	}
	if got != "model says hi" {
		t.Errorf("text = %q", got)
	}
	if want := "/v1beta/models/gemini-1.5-flash-latest:generateContent"; gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
}

func TestGenerateContent_StatusClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		headers map[string]string
		wantIs  error
	}{
		{"rate limited", http.StatusTooManyRequests, map[string]string{"Retry-After": "7"}, apierr.ErrRateLimit},
		{"forbidden", http.StatusForbidden, nil, apierr.ErrAuthFailed},
		{"unauthorized", http.StatusUnauthorized, nil, apierr.ErrAuthFailed},
		{"bad request", http.StatusBadRequest, nil, apierr.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			}))
			t.Cleanup(srv.Close)

			c := analyze.NewClient("test-key", analyze.WithBaseURL(srv.URL))

			_, err := c.GenerateContent(context.Background(), analyze.GenerateRequest{})

			if !errors.Is(err, tt.wantIs) {
				t.Errorf("error = %v, want %v", err, tt.wantIs)
			}
			if tt.status == http.StatusTooManyRequests {
				if hint := apierr.RetryDelayHint(err); hint != 7*time.Second {
					t.Errorf("retry hint = %v, want 7s", hint)
				}
			}
		})
	}
}

func TestGenerateContent_EmptyCandidates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"candidates": []}`)
	}))
	t.Cleanup(srv.Close)

	c := analyze.NewClient("test-key", analyze.WithBaseURL(srv.URL))

	if _, err := c.GenerateContent(context.Background(), analyze.GenerateRequest{}); err == nil {
		t.Error("GenerateContent accepted an empty candidate list")
	}
}

// ---------------------------------------------------------------------------
// TestNotConfigured - Empty key fails before any network call
// ---------------------------------------------------------------------------

func TestNotConfigured(t *testing.T) {
	t.Parallel()

	c := analyze.NewClient("")

	if c.Configured() {
		t.Error("Configured() = true for empty key")
	}
	if _, err := c.GenerateContent(context.Background(), analyze.GenerateRequest{}); !errors.Is(err, apierr.ErrNotConfigured) {
		t.Errorf("GenerateContent error = %v, want ErrNotConfigured", err)
	}
	if _, err := c.Topics(context.Background(), "/tmp/a.flac", 60, analyze.ModeSegmentation, ""); !errors.Is(err, apierr.ErrNotConfigured) {
		t.Errorf("Topics error = %v, want ErrNotConfigured", err)
	}
	if _, err := c.SuggestSegments(context.Background(), "u", "", ""); !errors.Is(err, apierr.ErrNotConfigured) {
		t.Errorf("SuggestSegments error = %v, want ErrNotConfigured", err)
	}
}

// ---------------------------------------------------------------------------
// TestTopics - Upload then generate, prompt varies by mode
// ---------------------------------------------------------------------------

func TestTopics(t *testing.T) {
	t.Parallel()

	audio := filepath.Join(t.TempDir(), "lecture.flac")
	if err := os.WriteFile(audio, []byte("flac"), 0o644); err != nil {
		t.Fatal(err)
	}

	var prompts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/upload/") {
			fmt.Fprint(w, `{"file": {"uri": "files/f1"}}`)
			return
		}
		var req analyze.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && len(req.Contents) > 0 {
			prompts = append(prompts, req.Contents[0].Parts[0].Text)
			if len(req.Contents[0].Parts) < 2 || req.Contents[0].Parts[1].FileData == nil {
				t.Error("generate request missing fileData part")
			}
		}
		fmt.Fprint(w, generateBody("**Topic 1: Intro**"))
	}))
	t.Cleanup(srv.Close)

	c := analyze.NewClient("test-key", analyze.WithBaseURL(srv.URL))

	got, err := c.Topics(context.Background(), audio, 300, analyze.ModeSegmentation, "")
	if err != nil {
		t.Fatalf("Topics returned error: %v", err)
	}
	if got != "**Topic 1: Intro**" {
		t.Errorf("text = %q", got)
	}
	if len(prompts) != 1 || !strings.Contains(prompts[0], "300 seconds") {
		t.Errorf("segmentation prompt missing duration: %q", prompts)
	}

	if _, err := c.Topics(context.Background(), audio, 300, analyze.ModeCustom, "what is covered?"); err != nil {
		t.Fatalf("Topics (custom) returned error: %v", err)
	}
	if last := prompts[len(prompts)-1]; !strings.Contains(last, "what is covered?") {
		t.Errorf("custom prompt missing query: %q", last)
	}
}
