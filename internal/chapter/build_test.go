package chapter_test

import (
	"testing"

	"github.com/alnah/go-chapterize/internal/chapter"
	"github.com/alnah/go-chapterize/internal/timestamp"
)

func intp(v int) *int { return &v }

// ---------------------------------------------------------------------------
// TestBuild_EmptyInput - Fallback chapter with a single full-source segment
// ---------------------------------------------------------------------------

func TestBuild_EmptyInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		total   *int
		wantEnd int
		wantDur *int
	}{
		{"unknown duration", nil, 0, nil},
		{"known duration", intp(300), 300, intp(300)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := chapter.Build(nil, tt.total)

			if len(got) != 1 {
				t.Fatalf("Build(nil) returned %d chapters, want 1", len(got))
			}
			if got[0].Title != chapter.FallbackChapterTitle {
				t.Errorf("chapter title = %q, want %q", got[0].Title, chapter.FallbackChapterTitle)
			}
			if len(got[0].Segments) != 1 {
				t.Fatalf("fallback chapter has %d segments, want 1", len(got[0].Segments))
			}
			seg := got[0].Segments[0]
			if seg.Start != 0 {
				t.Errorf("segment start = %d, want 0", seg.Start)
			}
			if seg.End != tt.wantEnd {
				t.Errorf("segment end = %d, want %d", seg.End, tt.wantEnd)
			}
			if (seg.Duration == nil) != (tt.wantDur == nil) {
				t.Fatalf("segment duration = %v, want %v", seg.Duration, tt.wantDur)
			}
			if seg.Duration != nil && *seg.Duration != *tt.wantDur {
				t.Errorf("segment duration = %d, want %d", *seg.Duration, *tt.wantDur)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestBuild_EndResolutionPrecedence - Successor item, then successor group
// ---------------------------------------------------------------------------

func TestBuild_EndResolutionPrecedence(t *testing.T) {
	t.Parallel()

	groups := []timestamp.Group{
		{Title: "First", Items: []timestamp.Item{{Title: "a", Start: 0}, {Title: "b", Start: 30}}},
		{Title: "Second", FirstStart: intp(90)},
	}

	got := chapter.Build(groups, nil)

	if len(got) != 2 {
		t.Fatalf("Build returned %d chapters, want 2", len(got))
	}
	first := got[0].Segments
	if len(first) != 2 {
		t.Fatalf("chapter 0 has %d segments, want 2", len(first))
	}
	if first[0].End != 30 {
		t.Errorf("segment 0 end = %d, want 30 (next item start)", first[0].End)
	}
	if first[1].End != 90 {
		t.Errorf("segment 1 end = %d, want 90 (next group start)", first[1].End)
	}

	// Itemless trailing group synthesizes one segment from its header and
	// falls back to start+60 with no successor and no total duration.
	second := got[1].Segments
	if len(second) != 1 {
		t.Fatalf("chapter 1 has %d segments, want 1", len(second))
	}
	if second[0].Title != "Second" || second[0].Start != 90 || second[0].End != 150 {
		t.Errorf("synthesized segment = %+v, want Second 90-150", second[0])
	}
}

// ---------------------------------------------------------------------------
// TestBuild_ExplicitEndWins - Explicit ends beat every successor rule
// ---------------------------------------------------------------------------

func TestBuild_ExplicitEndWins(t *testing.T) {
	t.Parallel()

	groups := []timestamp.Group{
		{Title: "Only", Items: []timestamp.Item{
			{Title: "a", Start: 0, End: intp(20)},
			{Title: "b", Start: 30, End: intp(45)},
		}},
	}

	got := chapter.Build(groups, intp(600))

	segs := got[0].Segments
	if segs[0].End != 20 {
		t.Errorf("segment 0 end = %d, want explicit 20", segs[0].End)
	}
	if segs[1].End != 45 {
		t.Errorf("segment 1 end = %d, want explicit 45", segs[1].End)
	}
	if segs[1].Duration == nil || *segs[1].Duration != 15 {
		t.Errorf("segment 1 duration = %v, want 15", segs[1].Duration)
	}
}

// ---------------------------------------------------------------------------
// TestBuild_TotalDurationBoundsLastSegment
// ---------------------------------------------------------------------------

func TestBuild_TotalDurationBoundsLastSegment(t *testing.T) {
	t.Parallel()

	groups := []timestamp.Group{
		{Title: "Only", Items: []timestamp.Item{{Title: "a", Start: 100}}},
	}

	got := chapter.Build(groups, intp(250))

	if end := got[0].Segments[0].End; end != 250 {
		t.Errorf("last segment end = %d, want total duration 250", end)
	}
}

// ---------------------------------------------------------------------------
// TestBuild_ZeroLengthSegment - Emitted with nil duration, end clamped
// ---------------------------------------------------------------------------

func TestBuild_ZeroLengthSegment(t *testing.T) {
	t.Parallel()

	groups := []timestamp.Group{
		{Title: "Only", Items: []timestamp.Item{
			{Title: "a", Start: 50, End: intp(50)},
			{Title: "b", Start: 80, End: intp(40)},
		}},
	}

	got := chapter.Build(groups, nil)

	segs := got[0].Segments
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[0].Start != 50 || segs[0].End != 50 || segs[0].Duration != nil {
		t.Errorf("segment 0 = %+v, want 50-50 with nil duration", segs[0])
	}
	// End before start clamps to the start instead of going negative.
	if segs[1].Start != 80 || segs[1].End != 80 || segs[1].Duration != nil {
		t.Errorf("segment 1 = %+v, want 80-80 with nil duration", segs[1])
	}
}

// ---------------------------------------------------------------------------
// TestBuild_DefaultTitles - Missing titles get positional names
// ---------------------------------------------------------------------------

func TestBuild_DefaultTitles(t *testing.T) {
	t.Parallel()

	groups := []timestamp.Group{
		{Items: []timestamp.Item{{Start: 0}, {Start: 10}}},
	}

	got := chapter.Build(groups, nil)

	if got[0].Title != "Topic 1" {
		t.Errorf("chapter title = %q, want %q", got[0].Title, "Topic 1")
	}
	if got[0].Segments[0].Title != "Segment 1" || got[0].Segments[1].Title != "Segment 2" {
		t.Errorf("segment titles = %q, %q; want Segment 1, Segment 2",
			got[0].Segments[0].Title, got[0].Segments[1].Title)
	}
}
