package timestamp

import (
	"regexp"
	"strings"
)

var (
	cueTimeRe = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2}\.\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2}\.\d{3})`)
	cueTagRe  = regexp.MustCompile(`<[^>]+>`)
	cueNumRe  = regexp.MustCompile(`^\d+$`)
)

// FlattenVTT collapses a WEBVTT document into plain "[start-end] text"
// lines, one per cue, dropping the header, cue numbers and inline markup.
// The result feeds prompt text rather than playback, so cue settings
// after the time range are ignored.
func FlattenVTT(vtt string) string {
	lines := strings.Split(strings.ReplaceAll(vtt, "\r\n", "\n"), "\n")
	var out []string
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		i++
		if line == "" {
			continue
		}
		m := cueTimeRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		var textLines []string
		for i < len(lines) {
			t := strings.TrimSpace(lines[i])
			i++
			if t == "" {
				break
			}
			if cueTimeRe.MatchString(t) {
				i--
				break
			}
			if strings.HasPrefix(strings.ToUpper(t), "WEBVTT") {
				continue
			}
			if cueNumRe.MatchString(t) {
				continue
			}
			textLines = append(textLines, t)
		}
		text := strings.TrimSpace(cueTagRe.ReplaceAllString(strings.Join(textLines, " "), ""))
		if text != "" {
			out = append(out, "["+m[1]+"-"+m[2]+"] "+text)
		}
	}
	return strings.Join(out, "\n")
}
