// Package chapter turns parsed timestamp groups into chapters with fully
// resolved segment boundaries.
package chapter

import (
	"fmt"

	"github.com/alnah/go-chapterize/internal/timestamp"
)

// Titles used when the source material provides none.
const (
	FallbackChapterTitle = "Segments"
	FallbackSegmentTitle = "Full Segment"
)

// Segment is a titled, time-bounded sub-range of the source. Duration is
// nil for zero-length segments; those are kept so clip generation can
// reject them with context instead of silently dropping entries.
type Segment struct {
	Title      string
	Desc       string
	Start      int
	End        int
	Duration   *int
	OrderIndex int
}

// Chapter groups ordered segments under one topic.
type Chapter struct {
	Title      string
	OrderIndex int
	Segments   []Segment
}

// Build resolves groups into chapters with concrete segment boundaries.
// totalDuration, when known, bounds trailing segments; pass nil when the
// source length is unknown.
//
// End resolution, first match wins: the item's explicit end, the next
// item's start, the next group's first start, the total duration, and
// finally start plus sixty seconds. An end never precedes its start.
//
// Empty input yields one fallback chapter spanning the whole source, so
// callers always get something to render.
func Build(groups []timestamp.Group, totalDuration *int) []Chapter {
	if len(groups) == 0 {
		return []Chapter{fallbackChapter(totalDuration)}
	}

	chapters := make([]Chapter, 0, len(groups))
	for gi, g := range groups {
		var nextGroupStart *int
		if gi+1 < len(groups) {
			nextGroupStart = groups[gi+1].FirstStart
		}

		title := g.Title
		if title == "" {
			title = fmt.Sprintf("Topic %d", gi+1)
		}

		items := g.Items
		if len(items) == 0 {
			// Itemless group: the header itself becomes the one segment.
			start := 0
			if g.FirstStart != nil {
				start = *g.FirstStart
			}
			items = []timestamp.Item{{Title: title, Start: start, Desc: g.Desc}}
		}

		segs := make([]Segment, 0, len(items))
		for i, it := range items {
			start := it.Start
			if start < 0 {
				start = 0
			}
			end := resolveEnd(it, items, i, nextGroupStart, totalDuration)
			if end < start {
				end = start
			}
			segTitle := it.Title
			if segTitle == "" {
				segTitle = fmt.Sprintf("Segment %d", i+1)
			}
			seg := Segment{
				Title:      segTitle,
				Desc:       it.Desc,
				Start:      start,
				End:        end,
				OrderIndex: i,
			}
			if end > start {
				d := end - start
				seg.Duration = &d
			}
			segs = append(segs, seg)
		}

		chapters = append(chapters, Chapter{Title: title, OrderIndex: gi, Segments: segs})
	}
	return chapters
}

func resolveEnd(it timestamp.Item, items []timestamp.Item, i int, nextGroupStart, totalDuration *int) int {
	switch {
	case it.End != nil:
		return *it.End
	case i+1 < len(items):
		return items[i+1].Start
	case nextGroupStart != nil:
		return *nextGroupStart
	case totalDuration != nil:
		return *totalDuration
	default:
		return it.Start + 60
	}
}

func fallbackChapter(totalDuration *int) Chapter {
	end := 0
	var dur *int
	if totalDuration != nil && *totalDuration > 0 {
		end = *totalDuration
		d := end
		dur = &d
	}
	return Chapter{
		Title: FallbackChapterTitle,
		Segments: []Segment{{
			Title:    FallbackSegmentTitle,
			Start:    0,
			End:      end,
			Duration: dur,
		}},
	}
}
