// Package analyze talks to generative model providers: topic analysis
// over uploaded audio, segment suggestion from transcripts, title
// shortening, batch text formatting, and Whisper transcription.
package analyze

import (
	"errors"
	"fmt"
)

// Mode selects what the audio analysis should produce.
type Mode string

// Exported mode constants are the intended API; arbitrary strings go
// through ParseMode.
const (
	// ModeSegmentation asks for a structured, timestamped topic summary.
	ModeSegmentation Mode = "segmentation"
	// ModeTranscription asks for a transcript, translated to English when
	// the audio is in another language.
	ModeTranscription Mode = "transcription"
	// ModeCustom transcribes and then answers a caller-supplied question.
	ModeCustom Mode = "custom"
)

// ErrUnknownMode indicates a mode string matched no known mode.
var ErrUnknownMode = errors.New("unknown analysis mode")

// ParseMode validates a mode string. Matching is case-sensitive.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSegmentation, ModeTranscription, ModeCustom:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownMode)
	}
}

func (m Mode) String() string { return string(m) }

// FormatMode selects how batch text formatting treats content length.
type FormatMode string

const (
	// FormatOriginal keeps the original content length and meaning.
	FormatOriginal FormatMode = "original"
	// FormatBrief condenses each batch to its key points.
	FormatBrief FormatMode = "brief"
	// FormatDetail expands each batch with added context.
	FormatDetail FormatMode = "detail"
)

// ParseFormatMode validates a format mode string.
func ParseFormatMode(s string) (FormatMode, error) {
	switch FormatMode(s) {
	case FormatOriginal, FormatBrief, FormatDetail:
		return FormatMode(s), nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownMode)
	}
}
