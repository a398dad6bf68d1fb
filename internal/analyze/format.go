package analyze

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/alnah/go-chapterize/internal/apierr"
)

const (
	// Pages per generation request.
	formatBatchSize = 5

	// Page size, in characters, for re-pagination of the output.
	defaultPageSize = 4000
)

var pageBreakRe = regexp.MustCompile(`<!-- PAGEBREAK:\d+ -->`)

// batchCursor tracks progress through the page batches. Retrying a
// rate-limited batch leaves the cursor untouched; only advance moves it.
// Keeping this state explicit makes the retry behavior testable without
// the surrounding loop.
type batchCursor struct {
	next int // index of the first page of the next batch
	done int // pages completed so far
}

// batch returns the half-open page range of the current batch.
func (c batchCursor) batch(total int) (lo, hi int) {
	hi = c.next + formatBatchSize
	if hi > total {
		hi = total
	}
	return c.next, hi
}

func (c batchCursor) finished(total int) bool { return c.next >= total }

func (c *batchCursor) advance(pages int) {
	c.next += pages
	c.done += pages
}

// FormatPages reformats page-broken text into clean markdown, batch by
// batch. Each batch is one generation call; batches are paced to respect
// free-tier rate limits. A 429 waits the provider-specified delay and
// retries the same batch; any other failure inserts a placeholder for
// that page range and moves on, so one bad batch never loses the rest.
// The output is re-paginated with PAGEBREAK markers.
func (c *Client) FormatPages(ctx context.Context, text string, mode FormatMode) (string, error) {
	if err := c.requireKey(); err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no text provided to format")
	}

	var pages []string
	for _, p := range pageBreakRe.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			pages = append(pages, p)
		}
	}
	if len(pages) == 0 {
		return "", errors.New("no content after splitting page breaks")
	}

	var formatted []string
	var cur batchCursor
	for !cur.finished(len(pages)) {
		lo, hi := cur.batch(len(pages))
		startPage, endPage := cur.done+1, cur.done+(hi-lo)

		if err := sleepCtx(ctx, c.batchPause); err != nil {
			return "", err
		}

		out, err := c.GenerateContent(ctx, formatRequest(pages[lo:hi], startPage, endPage, mode))
		switch {
		case err == nil:
			formatted = append(formatted, out)
			cur.advance(hi - lo)

		case errors.Is(err, apierr.ErrRateLimit):
			wait := apierr.RetryDelayHint(err)
			if wait <= 0 {
				wait = c.rateLimitWait
			}
			c.logger.Warn("rate limited, retrying batch", "pages", fmt.Sprintf("%d-%d", startPage, endPage), "wait", wait)
			if err := sleepCtx(ctx, wait); err != nil {
				return "", err
			}
			// Cursor untouched: the same batch runs again.

		default:
			c.logger.Warn("batch formatting failed", "pages", fmt.Sprintf("%d-%d", startPage, endPage), "error", err)
			formatted = append(formatted, fmt.Sprintf("--- Pages %d-%d Formatting Failed ---", startPage, endPage))
			cur.advance(hi - lo)
		}
	}

	return PaginateMarkdown(strings.Join(formatted, "\n\n"), defaultPageSize), nil
}

func formatRequest(batch []string, startPage, endPage int, mode FormatMode) GenerateRequest {
	var action string
	switch mode {
	case FormatBrief:
		action = "Please format and **briefly summarize** the following text"
	case FormatDetail:
		action = "Please format and **add detail to** the following text"
	default:
		action = "Please format the following text"
	}

	prompt := fmt.Sprintf(`%s from pages
%d-%d
of a document into clean, well-structured markdown. Follow these instructions carefully:

- **Content & Structure:**
  - The text may contain repeating headers and footers on each page. Remove these.
  - Preserve the original sequence of paragraphs and content.
  - Correct any spelling mistakes.
  - Do not add any introductory or concluding text that is not part of the original content.

- **Styling & Formatting:**
  - Use markdown headings (#, ##, ###) for titles and subtitles.
  - Use bold (**text**) for emphasis on key terms and file names.
  - Use inline code formatting for variable names and short code snippets.
  - Format multi-line code blocks with appropriate language identifiers.
  - Preserve lists and format them correctly as bulleted or numbered lists.
  - Format notes as markdown blockquotes (>).

- **Brief vs. Detail:**
  - If asked to **brief**, provide a concise summary of the content, keeping the essence and key points.
  - If asked to **add detail**, expand on the content with appropriate context.
  - If just asked to **format**, keep the original content length and meaning.

- **Output:**
  - Do not include page numbers in the output.
  - Ensure the output is only valid markdown.

Here is the text from pages %d-%d:
---
%s`, action, startPage, endPage, startPage, endPage, strings.Join(batch, "\n\n"))

	return GenerateRequest{
		Contents: []Content{{Parts: []Part{{Text: prompt}}}},
		GenerationConfig: &GenerationConfig{
			Temperature:     0.2,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 8192,
		},
	}
}

// PaginateMarkdown splits markdown into pages of roughly size characters,
// inserting PAGEBREAK markers for the viewer. Breaks land on paragraph
// boundaries when one exists past the halfway point, then on line
// boundaries, then mid-text.
func PaginateMarkdown(text string, size int) string {
	if size <= 0 {
		size = defaultPageSize
	}
	if len(text) <= size {
		return fmt.Sprintf("<!-- PAGEBREAK:1 -->\n\n%s", text)
	}

	var chunks []string
	page := 1
	remaining := text
	for len(remaining) > 0 {
		chunks = append(chunks, fmt.Sprintf("<!-- PAGEBREAK:%d -->", page))

		split := min(len(remaining), size)
		if len(remaining) > size {
			if pos := strings.LastIndex(remaining[:size], "\n\n"); pos > size/2 {
				split = pos
			} else if pos := strings.LastIndex(remaining[:size], "\n"); pos > size/2 {
				split = pos
			}
		}
		chunks = append(chunks, remaining[:split])
		remaining = strings.TrimSpace(remaining[split:])
		page++
	}
	return strings.Join(chunks, "\n\n")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
