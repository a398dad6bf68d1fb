package timestamp_test

import (
	"errors"
	"testing"

	"github.com/alnah/go-chapterize/internal/timestamp"
)

// ---------------------------------------------------------------------------
// TestParseToken_Valid - Accepted token shapes convert to seconds
// ---------------------------------------------------------------------------

func TestParseToken_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tok  string
		want int
	}{
		{"minutes seconds", "1:23", 83},
		{"zero", "0:00", 0},
		{"padded minutes", "01:02", 62},
		{"bracketed", "[12:05]", 725},
		{"parenthesized", "(2:30)", 150},
		{"hours", "1:02:03", 3723},
		{"fractional seconds discarded", "0:01:02.500", 62},
		{"surrounding space", " 3:04 ", 184},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := timestamp.ParseToken(tt.tok)

			if err != nil {
				t.Fatalf("ParseToken(%q) returned error: %v", tt.tok, err)
			}
			if got != tt.want {
				t.Errorf("ParseToken(%q) = %d, want %d", tt.tok, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestParseToken_Invalid - Malformed tokens return ErrBadToken
// ---------------------------------------------------------------------------

func TestParseToken_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tok  string
	}{
		{"no colon", "123"},
		{"too many components", "1:2:3:4"},
		{"non-numeric component", "1:xx"},
		{"negative component", "-1:20"},
		{"empty string", ""},
		{"words", "intro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := timestamp.ParseToken(tt.tok)

			if !errors.Is(err, timestamp.ErrBadToken) {
				t.Errorf("ParseToken(%q) error = %v, want ErrBadToken", tt.tok, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFormatSeconds - Normalized rendering, hour component only when needed
// ---------------------------------------------------------------------------

func TestFormatSeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   int
		want string
	}{
		{"zero", 0, "0:00"},
		{"under a minute", 59, "0:59"},
		{"minutes", 62, "1:02"},
		{"many minutes", 600, "10:00"},
		{"hours", 3723, "1:02:03"},
		{"negative clamps to zero", -5, "0:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := timestamp.FormatSeconds(tt.in); got != tt.want {
				t.Errorf("FormatSeconds(%d) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestTokenRoundTrip - FormatSeconds then ParseToken is the identity
// ---------------------------------------------------------------------------

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	for _, secs := range []int{0, 1, 59, 60, 61, 599, 3599, 3600, 3661, 7322, 86399} {
		tok := timestamp.FormatSeconds(secs)
		got, err := timestamp.ParseToken(tok)
		if err != nil {
			t.Fatalf("ParseToken(%q) returned error: %v", tok, err)
		}
		if got != secs {
			t.Errorf("round trip %d -> %q -> %d", secs, tok, got)
		}
	}
}
