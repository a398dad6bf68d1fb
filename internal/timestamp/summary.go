package timestamp

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultGroupTitle names the group synthesized when timestamped items
// appear before any topic heading.
const DefaultGroupTitle = "Segments"

// Item is one time-bounded entry inside a group. End is nil unless the
// source line carried an explicit end time; the chapter builder resolves
// missing ends later.
type Item struct {
	Title string
	Start int
	End   *int
	Desc  string
}

// Group is a top-level topic with its ordered items. FirstStart is the
// start of the earliest item, or the heading line's own timestamp for an
// itemless group; nil when neither exists.
type Group struct {
	Title      string
	Desc       string
	FirstStart *int
	Items      []Item
}

// Result is the outcome of parsing a timestamp summary.
type Result struct {
	Groups []Group
}

// Line-shape patterns. The input is model output: near-markdown but with
// no guaranteed schema, so classification is per line, most specific
// shape first.
var (
	// timeTokenRe matches [MM:SS], MM:SS, [H:MM:SS], H:MM:SS with
	// optional fractional seconds.
	timeTokenRe = regexp.MustCompile(`\[?\b\d{1,2}:(?:\d{1,2}:)?\d{2}(?:\.\d+)?\]?`)

	topicTestRe   = regexp.MustCompile(`^\*\*Topic \d+:[^\d]`)
	topicPrefixRe = regexp.MustCompile(`^\*\*Topic \d+:`)

	subtopicRe = regexp.MustCompile(`^\* (\d{1,2}:\d{2}-\d{1,2}:\d{2}) \*\*(.*?):\*\* (.*)$`)

	bulletRe = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)]|\[\d+\])\s+`)

	// titleDescRe splits "Title: Description" / "Title - Description".
	// The separator must be followed by whitespace so hyphens inside
	// words ("Real-world") never split.
	titleDescRe = regexp.MustCompile(`^(.*?)\s*(?::|[-–—‐])\s+(.*)$`)

	leadingSepRe  = regexp.MustCompile(`^[\s\-–—:.]+`)
	trailingSepRe = regexp.MustCompile(`[\s\-–—:]+$`)
)

// entry is a classified input line before grouping.
type entry struct {
	level   int
	heading bool
	start   int
	end     *int
	title   string
	desc    string
}

// ParseSummary parses freeform timestamped text into ordered groups.
//
// Line classification, most specific first:
//  1. "**Topic N:**" headings open a new group (no timestamp of their own).
//  2. Strict subtopic lines "* M:SS-M:SS **Title:** desc" become items
//     with explicit start and end.
//  3. Any other line is scanned for timestamp tokens; the LAST one wins,
//     since descriptions often restate an earlier time before the actual
//     topic timestamp. Indented or bulleted lines are items of the
//     current group; bare lines open their own group, except directly
//     under a still-empty heading where they read as that topic's content.
//
// After grouping, items are sorted by start and groups by first start;
// both sorts are stable so groups without a timestamp keep their input
// position. Text with no parseable entries yields an empty Result, which
// callers treat as a soft failure (fall back to a whole-source segment).
func ParseSummary(text string) Result {
	var entries []entry
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if e, ok := classifyLine(raw); ok {
			entries = append(entries, e)
		}
	}

	if len(entries) == 0 {
		return Result{Groups: []Group{}}
	}

	var groups []*Group
	var current *Group
	for _, e := range entries {
		switch {
		case e.heading:
			current = &Group{Title: e.title, Desc: e.desc}
			groups = append(groups, current)

		case e.level == 0:
			if current != nil && current.FirstStart == nil && len(current.Items) == 0 {
				// Bare timestamped line directly under an empty heading:
				// treat it as the heading's first item.
				current.Items = append(current.Items, Item{Title: e.title, Start: e.start, End: e.end, Desc: e.desc})
			} else {
				start := e.start
				current = &Group{Title: e.title, Desc: e.desc, FirstStart: &start}
				groups = append(groups, current)
			}

		default:
			if current == nil {
				current = &Group{Title: DefaultGroupTitle}
				groups = append(groups, current)
			}
			current.Items = append(current.Items, Item{Title: e.title, Start: e.start, End: e.end, Desc: e.desc})
		}
	}

	// Model output order is not guaranteed chronological even when the
	// content is: order by timestamp after classification.
	for _, g := range groups {
		sort.SliceStable(g.Items, func(i, j int) bool { return g.Items[i].Start < g.Items[j].Start })
		if len(g.Items) > 0 {
			fs := g.Items[0].Start
			g.FirstStart = &fs
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return startOrZero(groups[i]) < startOrZero(groups[j])
	})

	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = *g
	}
	return Result{Groups: out}
}

// contentOffset is the byte index where line content starts, past
// indentation and any bullet marker.
func contentOffset(raw string) int {
	if m := bulletRe.FindStringIndex(raw); m != nil {
		return m[1]
	}
	return len(raw) - len(strings.TrimLeft(raw, " \t"))
}

func startOrZero(g *Group) int {
	if g.FirstStart == nil {
		return 0
	}
	return *g.FirstStart
}

func classifyLine(raw string) (entry, bool) {
	if topicTestRe.MatchString(raw) {
		title := strings.TrimSpace(topicPrefixRe.ReplaceAllString(raw, ""))
		title = strings.TrimSpace(strings.Trim(title, "*"))
		return entry{level: 0, heading: true, title: title}, true
	}

	if m := subtopicRe.FindStringSubmatch(raw); m != nil {
		startTok, endTok, _ := strings.Cut(m[1], "-")
		start, err := ParseToken(startTok)
		if err != nil {
			return entry{}, false
		}
		e := entry{
			level: 1,
			start: start,
			title: strings.ReplaceAll(m[2], "**", ""),
			desc:  strings.TrimSpace(m[3]),
		}
		if end, err := ParseToken(endTok); err == nil {
			e.end = &end
		}
		return e, true
	}

	return classifyFallback(raw)
}

// classifyFallback handles lines with no recognized shape: pick the
// authoritative timestamp token, derive title/description from the
// surrounding text, and infer the nesting level from indentation or a
// bullet marker.
//
// Token choice: a timestamp that opens the line (after indentation or a
// bullet) is authoritative, the classic "M:SS title" chapter shape.
// Otherwise the LAST token wins, since descriptions restate earlier time
// references before the actual topic timestamp.
func classifyFallback(raw string) (entry, bool) {
	tokens := timeTokenRe.FindAllStringIndex(raw, -1)
	if len(tokens) == 0 {
		return entry{}, false
	}
	last := tokens[len(tokens)-1]
	if tokens[0][0] == contentOffset(raw) {
		last = tokens[0]
	}
	secs, err := ParseToken(raw[last[0]:last[1]])
	if err != nil {
		return entry{}, false
	}

	// Prefer text before the timestamp; fall back to text after it.
	trailing := strings.TrimSpace(leadingSepRe.ReplaceAllString(raw[last[1]:], ""))
	leading := strings.TrimSpace(raw[:last[0]])
	if leading != "" {
		// Drop an earlier timestamp (e.g. the start of a "start-end"
		// range) and its trailing separators from the title source.
		if leadTokens := timeTokenRe.FindAllStringIndex(leading, -1); len(leadTokens) > 0 {
			cut := leadTokens[len(leadTokens)-1][0]
			leading = strings.TrimSpace(trailingSepRe.ReplaceAllString(leading[:cut], ""))
		}
	}
	textPart := leading
	if textPart == "" {
		textPart = trailing
	}

	title := textPart
	desc := ""
	if m := titleDescRe.FindStringSubmatch(textPart); m != nil {
		title = strings.TrimSpace(m[1])
		desc = strings.TrimSpace(m[2])
	}
	title = strings.ReplaceAll(title, "**", "")
	if nl := strings.IndexByte(desc, '\n'); nl >= 0 {
		desc = strings.TrimSpace(desc[:nl])
	}

	leadingSpace := len(raw) - len(strings.TrimLeft(raw, " \t"))
	level := 0
	if leadingSpace >= 2 || bulletRe.MatchString(raw) {
		level = 1
	}

	return entry{level: level, start: secs, title: title, desc: desc}, true
}
