package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	maxTitleLen   = 120
	maxSummaryLen = 2000
)

// Segment is one model-proposed sub-range of a source.
type Segment struct {
	Title        string `json:"title"`
	StartSeconds int    `json:"startSeconds"`
	EndSeconds   int    `json:"endSeconds"`
	Summary      string `json:"summary,omitempty"`
}

type segmentsPayload struct {
	Segments []struct {
		Title        string   `json:"title"`
		StartSeconds *float64 `json:"startSeconds"`
		EndSeconds   *float64 `json:"endSeconds"`
		Summary      string   `json:"summary"`
	} `json:"segments"`
}

type titlesPayload struct {
	Titles []string `json:"titles"`
}

// fencedJSONRe recovers a JSON body the model wrapped in a markdown code
// fence despite being asked for raw JSON.
var fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\n(.*?)\n```")

// decodeLoose is the two-step decoder for model JSON output: strict
// unmarshal first, then one attempt at a fenced-block extraction. Both
// paths fill the same typed value or fail with a typed error.
func decodeLoose(text string, v any) error {
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}
	m := fencedJSONRe.FindStringSubmatch(text)
	if m == nil {
		return fmt.Errorf("model output is neither raw JSON nor a fenced JSON block")
	}
	if err := json.Unmarshal([]byte(m[1]), v); err != nil {
		return fmt.Errorf("fenced block is not valid JSON: %w", err)
	}
	return nil
}

// SuggestSegments asks the model to propose a timestamped outline for a
// video. When transcript is non-empty the model is restricted to it;
// otherwise the model works from the URL alone. Entries with unusable
// bounds are dropped, starts and ends are floored and clamped to zero,
// and title/summary are truncated to sane lengths.
func (c *Client) SuggestSegments(ctx context.Context, url, transcript, customPrompt string) ([]Segment, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	text, err := c.GenerateContent(ctx, GenerateRequest{
		Contents: []Content{{
			Role:  "user",
			Parts: []Part{{Text: segmentsPrompt(url, transcript, customPrompt)}},
		}},
		GenerationConfig: &GenerationConfig{
			Temperature:      0.2,
			TopP:             0.9,
			TopK:             40,
			ResponseMIMEType: "application/json",
		},
	})
	if err != nil {
		return nil, err
	}

	var payload segmentsPayload
	if err := decodeLoose(text, &payload); err != nil {
		return nil, fmt.Errorf("decode segments: %w", err)
	}

	var out []Segment
	for _, s := range payload.Segments {
		if s.StartSeconds == nil || s.EndSeconds == nil || *s.EndSeconds <= *s.StartSeconds {
			continue
		}
		title := s.Title
		if title == "" {
			title = "Segment"
		}
		out = append(out, Segment{
			Title:        truncate(title, maxTitleLen),
			StartSeconds: max(0, int(*s.StartSeconds)),
			EndSeconds:   max(0, int(*s.EndSeconds)),
			Summary:      truncate(s.Summary, maxSummaryLen),
		})
	}
	return out, nil
}

// SuggestShortTitles rewrites verbose segment descriptions into concise,
// unique titles fit for UI labels and filenames. The model is asked for
// one title per description; the result is truncated to maxLen, which is
// clamped to [20, 100].
func (c *Client) SuggestShortTitles(ctx context.Context, descriptions []string, courseTitle string, maxLen int) ([]string, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}
	if len(descriptions) == 0 {
		return nil, nil
	}
	maxLen = min(100, max(20, maxLen))

	text, err := c.GenerateContent(ctx, GenerateRequest{
		Contents: []Content{{
			Role:  "user",
			Parts: []Part{{Text: titlesPrompt(descriptions, courseTitle, maxLen)}},
		}},
		GenerationConfig: &GenerationConfig{
			Temperature:      0.2,
			TopP:             0.9,
			TopK:             40,
			ResponseMIMEType: "application/json",
		},
	})
	if err != nil {
		return nil, err
	}

	var payload titlesPayload
	if err := decodeLoose(text, &payload); err != nil {
		return nil, fmt.Errorf("decode titles: %w", err)
	}
	titles := make([]string, len(payload.Titles))
	for i, t := range payload.Titles {
		titles[i] = truncate(t, maxLen)
	}
	return titles, nil
}

func segmentsPrompt(url, transcript, customPrompt string) string {
	var b strings.Builder
	if transcript != "" {
		b.WriteString("You are given a YouTube video and its transcript with timestamps. " +
			"Using ONLY the transcript, propose a concise outline of the most useful " +
			"subtopics with precise timestamps (in seconds from the start).")
	} else {
		b.WriteString("You are given a YouTube URL. Analyze the content and propose a " +
			"concise outline of the most useful subtopics with precise timestamps " +
			"(in seconds from the start).")
	}
	b.WriteString(` Return strictly valid JSON with the following shape:
{
  "segments": [
    { "title": string, "startSeconds": number, "endSeconds": number, "summary": string }
  ]
}
Rules:
- startSeconds < endSeconds
- Prefer 3 to 12 segments depending on content length
- Titles should be short nouns or phrases
- summary is 1-2 sentences, helpful and specific
- Output ONLY the JSON, no markdown, no commentary.
Target video: `)
	b.WriteString(url)
	if transcript != "" {
		b.WriteString("\nTranscript (timestamped, may be truncated):\n---\n")
		b.WriteString(transcript)
		b.WriteString("\n---")
	}
	if p := strings.TrimSpace(customPrompt); p != "" {
		b.WriteString("\nAdditional instructions: ")
		b.WriteString(p)
	}
	return b.String()
}

func titlesPrompt(descriptions []string, courseTitle string, maxLen int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are given %d subtopic descriptions", len(descriptions))
	if courseTitle != "" {
		fmt.Fprintf(&b, " from a course titled: %s", courseTitle)
	}
	fmt.Fprintf(&b, `.
For each description, output a concise, unique short title only, with these rules:
- Max %d characters
- Title case where appropriate
- No numbering or quotes
- Avoid duplicates; if two are similar, make them distinct
Return strictly valid JSON in this shape:
{ "titles": [ string, ... ] }
Descriptions:
`, maxLen)
	for i, d := range descriptions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
