package timestamp

import (
	"sort"
	"strings"
)

// Entry is a chapter marker lifted from freeform text such as a video
// description: a start time and whatever title text sits next to it.
type Entry struct {
	Title string
	Start int
}

// ParseDescriptionChapters scans description text for "M:SS Title" style
// chapter lists. Unlike ParseSummary it takes the FIRST timestamp on each
// line: description chapters lead with their time, and any later token on
// the line belongs to the title. Entries come back sorted by start.
func ParseDescriptionChapters(description string) []Entry {
	var entries []Entry
	for _, raw := range strings.Split(strings.ReplaceAll(description, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		loc := timeTokenRe.FindStringIndex(raw)
		if loc == nil {
			continue
		}
		tok := raw[loc[0]:loc[1]]
		secs, err := ParseToken(tok)
		if err != nil {
			continue
		}
		title := strings.TrimSpace(leadingSepRe.ReplaceAllString(raw[loc[1]:], ""))
		if title == "" {
			title = strings.TrimSpace(raw[:loc[0]])
		}
		if title == "" {
			title = "Chapter @ " + tok
		}
		entries = append(entries, Entry{Title: title, Start: secs})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Start < entries[j].Start })
	return entries
}
