package download

import (
	"errors"
	"fmt"
)

// ErrProbeFailed indicates yt-dlp could not extract metadata for a URL.
// Probe failures are non-fatal to acquisition; an id is synthesized.
var ErrProbeFailed = errors.New("metadata probe failed")

// ErrNoTranscript indicates no subtitle or caption track was available in
// any preferred language.
var ErrNoTranscript = errors.New("no transcript track available")

// AcquisitionError reports that every download tier was exhausted. Stderr
// carries the combined tool output so callers can surface actionable
// hints (age gates and region locks usually name themselves there).
type AcquisitionError struct {
	URL    string
	Tiers  int
	Stderr string
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("all %d download tiers failed for %s", e.Tiers, e.URL)
}
