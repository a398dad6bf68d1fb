package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alnah/go-chapterize/internal/analyze"
	"github.com/alnah/go-chapterize/internal/chapter"
	"github.com/alnah/go-chapterize/internal/store"
	"github.com/alnah/go-chapterize/internal/timestamp"
)

// Outcome is the result of processing one source end to end.
type Outcome struct {
	CourseID    string
	Title       string
	SourceURL   string
	VideoPath   string
	PublicURL   string
	AudioPath   string
	DurationSec *int
	Summary     string
	Chapters    []chapter.Chapter
}

// Process runs a source through acquisition, audio extraction, topic
// analysis and chapter building. Analysis output that parses to zero
// entries degrades to the fallback chapter instead of failing.
func (p *Pipeline) Process(ctx context.Context, src Source, mode analyze.Mode, customQuery string) (*Outcome, error) {
	out := &Outcome{SourceURL: src.url}

	switch src.kind {
	case SourceRemote:
		acq, err := p.source.Acquire(ctx, src.url)
		if err != nil {
			return nil, err
		}
		out.VideoPath = acq.LocalPath
		out.PublicURL = acq.PublicURL
		out.Title = src.url
		if acq.Meta != nil && acq.Meta.Title != "" {
			out.Title = acq.Meta.Title
		}
		if acq.Meta != nil && acq.Meta.Duration > 0 {
			d := int(acq.Meta.Duration)
			out.DurationSec = &d
		}
	case SourceLocal:
		out.VideoPath = src.path
		base := filepath.Base(src.path)
		out.Title = strings.TrimSuffix(base, filepath.Ext(base))
	default:
		return nil, fmt.Errorf("unknown source kind %d", src.kind)
	}

	audioPath, err := p.media.ExtractAudio(ctx, out.VideoPath)
	if err != nil {
		return nil, err
	}
	out.AudioPath = audioPath

	if out.DurationSec == nil {
		if secs, err := p.media.Duration(ctx, out.VideoPath); err != nil {
			p.logger.Warn("duration probe failed, continuing without one", "error", err)
		} else if secs > 0 {
			d := int(secs)
			out.DurationSec = &d
		}
	}

	durationSec := 0
	if out.DurationSec != nil {
		durationSec = *out.DurationSec
	}
	summary, err := p.analyzer.Topics(ctx, audioPath, durationSec, mode, customQuery)
	if err != nil {
		return nil, &AnalysisError{Stage: "topics", Err: err}
	}
	out.Summary = summary

	result := timestamp.ParseSummary(summary)
	if len(result.Groups) == 0 {
		p.logger.Warn("no timed entries parsed from analysis, using fallback chapter",
			"title", out.Title)
	}
	out.Chapters = chapter.Build(result.Groups, out.DurationSec)

	if p.store != nil {
		if err := p.persist(ctx, out); err != nil {
			return nil, fmt.Errorf("persisting course: %w", err)
		}
	}

	p.logger.Info("source processed",
		"title", out.Title, "chapters", len(out.Chapters), "duration_sec", durationSec)
	return out, nil
}

// ProcessTranscript runs the transcript-only path: fetch captions,
// flatten them, and ask the model for segments. No media is downloaded.
func (p *Pipeline) ProcessTranscript(ctx context.Context, url, customPrompt string) ([]analyze.Segment, error) {
	vtt, err := p.source.Transcript(ctx, url)
	if err != nil {
		return nil, err
	}
	transcript := timestamp.FlattenVTT(vtt)

	segments, err := p.analyzer.SuggestSegments(ctx, url, transcript, customPrompt)
	if err != nil {
		return nil, &AnalysisError{Stage: "segments", Err: err}
	}
	return segments, nil
}

// persist maps the outcome onto the store models and saves it.
func (p *Pipeline) persist(ctx context.Context, out *Outcome) error {
	course := &store.Course{
		Title:       out.Title,
		SourceURL:   out.SourceURL,
		VideoPath:   out.VideoPath,
		VideoURL:    out.PublicURL,
		DurationSec: out.DurationSec,
	}
	for _, ch := range out.Chapters {
		sc := store.Chapter{Title: ch.Title, OrderIndex: ch.OrderIndex}
		for _, seg := range ch.Segments {
			sc.Segments = append(sc.Segments, store.Segment{
				Title:       seg.Title,
				Description: seg.Desc,
				StartSec:    seg.Start,
				EndSec:      seg.End,
				DurationSec: seg.Duration,
				OrderIndex:  seg.OrderIndex,
			})
		}
		course.Chapters = append(course.Chapters, sc)
	}
	if err := p.store.CreateCourse(ctx, course); err != nil {
		return err
	}
	out.CourseID = course.ID
	return nil
}
