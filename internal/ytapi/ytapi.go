// Package ytapi reads official video metadata through the YouTube Data
// API v3. It is the fast path for chapter discovery: when an uploader
// lists timestamps in the video description, those beat any model-derived
// segmentation.
package ytapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/alnah/go-chapterize/internal/timestamp"
)

const (
	defaultBaseURL  = "https://www.googleapis.com/youtube/v3"
	maxResponseSize = 10 * 1024 * 1024 // 10MB
)

// ErrBadVideoURL reports a URL no video ID could be extracted from.
var ErrBadVideoURL = errors.New("not a recognizable video URL")

// httpDoer abstracts the HTTP client for testing.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Chapter is one description-listed chapter with resolved bounds.
type Chapter struct {
	Title string
	Start int
	End   int
}

// Client queries the YouTube Data API. A zero API key is allowed; lookups
// then degrade to empty results so callers can fall through to analysis.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient httpDoer
	logger     hclog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(d httpDoer) Option {
	return func(c *Client) {
		if d != nil {
			c.httpClient = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l hclog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.Named("ytapi")
		}
	}
}

// New creates a YouTube Data API client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
		logger:     hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ----------------------------------------------------------------------------

var videoPathRe = regexp.MustCompile(`^/(?:embed|shorts|v|live)/([A-Za-z0-9_-]{6,})`)

// ExtractVideoID pulls the video ID out of the usual YouTube URL shapes:
// watch?v=, youtu.be/, /embed/, /shorts/, /live/.
func ExtractVideoID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadVideoURL, rawURL)
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch host {
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return id, nil
		}
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return id, nil
		}
		if m := videoPathRe.FindStringSubmatch(u.Path); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrBadVideoURL, rawURL)
}

var iso8601Re = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISO8601Duration converts the API's PT#H#M#S duration to seconds.
func ParseISO8601Duration(s string) (int, error) {
	m := iso8601Re.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("bad ISO 8601 duration %q", s)
	}
	total := 0
	for i, mult := range []int{3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, fmt.Errorf("bad ISO 8601 duration %q: %w", s, err)
		}
		total += n * mult
	}
	return total, nil
}

// ----------------------------------------------------------------------------

type videosResponse struct {
	Items []struct {
		Snippet struct {
			Description string `json:"description"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// Chapters fetches the video description and parses any chapter list the
// uploader put there. Without an API key it returns no chapters and no
// error so the caller can fall through to model-based segmentation.
func (c *Client) Chapters(ctx context.Context, videoURL string) ([]Chapter, error) {
	if c.apiKey == "" {
		c.logger.Debug("no API key, skipping description chapter lookup")
		return nil, nil
	}

	videoID, err := ExtractVideoID(videoURL)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("part", "snippet,contentDetails")
	q.Set("id", videoID)
	q.Set("key", c.apiKey)
	reqURL := c.baseURL + "/videos?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating videos request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("videos request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading videos response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("videos request failed with status %d: %s", resp.StatusCode, body)
	}

	var vr videosResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("parsing videos response: %w", err)
	}
	if len(vr.Items) == 0 {
		c.logger.Debug("video not found", "id", videoID)
		return nil, nil
	}

	item := vr.Items[0]
	totalDur := 0
	if d, err := ParseISO8601Duration(item.ContentDetails.Duration); err == nil {
		totalDur = d
	}

	entries := timestamp.ParseDescriptionChapters(item.Snippet.Description)
	chapters := resolveEnds(entries, totalDur)
	c.logger.Debug("description chapters parsed", "id", videoID, "count", len(chapters))
	return chapters, nil
}

// resolveEnds closes each entry at the next one's start, the last at the
// video's total duration when known.
func resolveEnds(entries []timestamp.Entry, totalDur int) []Chapter {
	chapters := make([]Chapter, 0, len(entries))
	for i, e := range entries {
		start := e.Start
		if start < 0 {
			start = 0
		}
		end := start
		switch {
		case i+1 < len(entries):
			end = entries[i+1].Start
		case totalDur > 0:
			end = totalDur
		}
		if end < start {
			end = start
		}
		chapters = append(chapters, Chapter{Title: e.Title, Start: start, End: end})
	}
	return chapters
}
