package timestamp

import (
	"regexp"
	"strings"
)

var (
	chapterLineRe = regexp.MustCompile(`^\* \*\*(.+?):\*\* (.+)`)
	timeRangeRe   = regexp.MustCompile(`^[\d:.-]+-[\d:.-]+\s+`)
)

// ListedChapter is one entry of an already formatted chapter list:
// "* **M:SS-M:SS Title:** description".
type ListedChapter struct {
	Title string
	Desc  string
	Start int
	End   int
}

// ParseChapterList parses the strict chapter list format the segmentation
// prompt asks for. Lines that do not match exactly are skipped, so prose
// around the list is harmless.
func ParseChapterList(text string) []ListedChapter {
	var chapters []ListedChapter
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		m := chapterLineRe.FindStringSubmatch(strings.TrimSpace(raw))
		if m == nil {
			continue
		}
		header, desc := m[1], strings.TrimSpace(m[2])
		tm := timeRangeRe.FindString(header)
		if tm == "" {
			continue
		}
		title := strings.TrimSpace(header[len(tm):])
		startTok, endTok, _ := strings.Cut(strings.TrimSpace(tm), "-")
		start, err := ParseToken(startTok)
		if err != nil {
			continue
		}
		end, err := ParseToken(endTok)
		if err != nil {
			continue
		}
		chapters = append(chapters, ListedChapter{Title: title, Desc: desc, Start: start, End: end})
	}
	return chapters
}
