package analyze

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-chapterize/internal/apierr"
)

// audioTranscriber is the slice of the OpenAI client the Transcriber
// needs; *openai.Client implements it implicitly.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// Compile-time interface compliance check.
var _ audioTranscriber = (*openai.Client)(nil)

// Transcriber produces plain-text transcripts through Whisper. It is the
// alternative to audio transcription via the Gemini path when a dedicated
// speech model is preferred.
type Transcriber struct {
	client audioTranscriber
	model  string
	logger hclog.Logger
}

// TranscriberOption configures a Transcriber.
type TranscriberOption func(*Transcriber)

// WithWhisperModel overrides the transcription model.
func WithWhisperModel(model string) TranscriberOption {
	return func(t *Transcriber) {
		if model != "" {
			t.model = model
		}
	}
}

// WithTranscriberLogger sets the structured logger.
func WithTranscriberLogger(l hclog.Logger) TranscriberOption {
	return func(t *Transcriber) {
		if l != nil {
			t.logger = l.Named("whisper")
		}
	}
}

// withTranscriberClient swaps the underlying client (for testing).
func withTranscriberClient(c audioTranscriber) TranscriberOption {
	return func(t *Transcriber) {
		if c != nil {
			t.client = c
		}
	}
}

// NewTranscriber creates a Whisper transcriber. An empty apiKey is
// allowed; Transcribe then fails with apierr.ErrNotConfigured.
func NewTranscriber(apiKey string, opts ...TranscriberOption) *Transcriber {
	t := &Transcriber{
		model:  openai.Whisper1,
		logger: hclog.NewNullLogger(),
	}
	if apiKey != "" {
		t.client = openai.NewClient(apiKey)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe sends audioPath to the speech model and returns plain text.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if t.client == nil {
		return "", fmt.Errorf("whisper: %w: OPENAI_API_KEY is empty", apierr.ErrNotConfigured)
	}
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}
	t.logger.Debug("transcription complete", "audio", audioPath, "chars", len(resp.Text))
	return resp.Text, nil
}
