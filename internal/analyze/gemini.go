package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/alnah/go-chapterize/internal/apierr"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-1.5-flash-latest"

	// Free-tier pacing: ~15 requests/minute.
	defaultBatchPause = 4 * time.Second

	// Default wait when a 429 carries no Retry-After header.
	defaultRateLimitWait = 60 * time.Second

	// Response size limit to prevent OOM from malformed responses (10MB).
	maxResponseSize = 10 * 1024 * 1024
)

// httpDoer abstracts the HTTP client for testing.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a Gemini REST client. The zero value is not usable; build it
// with NewClient. A Client with an empty API key is valid to construct
// and fails each call with apierr.ErrNotConfigured, which lets the
// pipeline degrade per feature instead of refusing to start.
type Client struct {
	apiKey        string
	baseURL       string
	model         string
	batchPause    time.Duration
	rateLimitWait time.Duration
	httpClient    httpDoer
	logger        hclog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithModel sets the generation model.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL sets a custom base URL (for testing or proxies).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		if url != "" {
			c.baseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithBatchPause sets the pause between formatting batches.
func WithBatchPause(d time.Duration) ClientOption {
	return func(c *Client) {
		if d >= 0 {
			c.batchPause = d
		}
	}
}

// WithRateLimitWait sets the fallback wait for 429s without Retry-After.
func WithRateLimitWait(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.rateLimitWait = d
		}
	}
}

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(doer httpDoer) ClientOption {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// WithClientLogger sets the structured logger.
func WithClientLogger(l hclog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l.Named("analyze")
		}
	}
}

// NewClient creates a Gemini client. An empty apiKey is allowed; calls
// will return apierr.ErrNotConfigured until one is provided.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:        apiKey,
		baseURL:       defaultBaseURL,
		model:         defaultModel,
		batchPause:    defaultBatchPause,
		rateLimitWait: defaultRateLimitWait,
		httpClient:    &http.Client{Timeout: 5 * time.Minute},
		logger:        hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

func (c *Client) requireKey() error {
	if c.apiKey == "" {
		return fmt.Errorf("gemini: %w: GEMINI_API_KEY is empty", apierr.ErrNotConfigured)
	}
	return nil
}

// --------------------------------------------------------------------------
// Wire types: the documented provider contract, not maps-of-any.
// --------------------------------------------------------------------------

// Content is one conversational turn.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is a piece of a turn: inline text or a reference to an uploaded
// file, never both.
type Part struct {
	Text     string    `json:"text,omitempty"`
	FileData *FileData `json:"fileData,omitempty"`
}

// FileData references a previously uploaded file by its opaque URI.
type FileData struct {
	MIMEType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

// GenerationConfig tunes sampling and output shape.
type GenerationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	TopP             float64 `json:"topP,omitempty"`
	TopK             int     `json:"topK,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

// GenerateRequest is the body of a generateContent call.
type GenerateRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content Content `json:"content"`
	} `json:"candidates"`
}

type uploadResponse struct {
	File struct {
		URI string `json:"uri"`
	} `json:"file"`
}

// --------------------------------------------------------------------------
// Calls
// --------------------------------------------------------------------------

// UploadFile pushes a local file to the provider's file store with the
// raw upload protocol and returns the opaque file URI to reference in
// generation requests.
func (c *Client) UploadFile(ctx context.Context, path, mimeType string) (string, error) {
	if err := c.requireKey(); err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", path, err)
	}
	defer f.Close()

	url := fmt.Sprintf("%s/upload/v1beta/files?key=%s&uploadType=media", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, f)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("X-Goog-Upload-Protocol", "raw")
	req.Header.Set("X-Goog-Upload-File-Name", filepath.Base(path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransport("upload", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus("upload", resp, body)
	}

	var up uploadResponse
	if err := json.Unmarshal(body, &up); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if up.File.URI == "" {
		return "", errors.New("upload response missing file uri")
	}
	c.logger.Debug("file uploaded", "path", path, "uri", up.File.URI)
	return up.File.URI, nil
}

// GenerateContent runs one generateContent call and returns the text of
// the first candidate part. An empty candidate list is an error: the
// caller always needs text.
func (c *Client) GenerateContent(ctx context.Context, req GenerateRequest) (string, error) {
	if err := c.requireKey(); err != nil {
		return "", err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", classifyTransport("generate", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read generate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus("generate", resp, body)
	}

	var gen generateResponse
	if err := json.Unmarshal(body, &gen); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	text := firstText(gen)
	if text == "" {
		return "", errors.New("generate response has no text candidates")
	}
	return text, nil
}

func firstText(gen generateResponse) string {
	for _, cand := range gen.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}

// classifyStatus maps provider HTTP failures onto the apierr taxonomy so
// callers can branch with errors.Is instead of parsing messages.
func classifyStatus(op string, resp *http.Response, body []byte) error {
	msg := strings.TrimSpace(string(body))
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return &apierr.RateLimitError{
			Message:    fmt.Sprintf("gemini %s: %s", op, msg),
			RetryAfter: retryAfterOf(resp),
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("gemini %s: %w: status %d: %s", op, apierr.ErrAuthFailed, resp.StatusCode, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("gemini %s: %w: %s", op, apierr.ErrBadRequest, msg)
	default:
		return fmt.Errorf("gemini %s: unexpected status %d: %s", op, resp.StatusCode, msg)
	}
}

func classifyTransport(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("gemini %s: %w: %v", op, apierr.ErrTimeout, err)
	}
	return fmt.Errorf("gemini %s: %w", op, err)
}

func retryAfterOf(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
