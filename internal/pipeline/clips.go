package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-chapterize/internal/chapter"
	"github.com/alnah/go-chapterize/internal/media"
)

// ClipOutcome describes one segment's rendering result.
type ClipOutcome struct {
	ChapterIndex  int
	SegmentIndex  int
	Title         string
	ClipPath      string
	ThumbnailPath string
	Skipped       bool
}

// GenerateClips renders one clip (and thumbnail) per segment under
// outDir, at most clipParallelism at a time. Zero-length segments are
// skipped without failing the batch; any other render error aborts it.
func (p *Pipeline) GenerateClips(ctx context.Context, sourcePath string, chapters []chapter.Chapter, outDir string) ([]ClipOutcome, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating clip directory: %w", err)
	}

	total := 0
	for _, ch := range chapters {
		total += len(ch.Segments)
	}
	outcomes := make([]ClipOutcome, total)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.clipParallelism)

	idx := 0
	for ci, ch := range chapters {
		for si, seg := range ch.Segments {
			slot := idx
			idx++
			g.Go(func() error {
				out := ClipOutcome{ChapterIndex: ci, SegmentIndex: si, Title: seg.Title}
				name := fmt.Sprintf("chapter-%02d-segment-%02d", ci+1, si+1)
				clipPath := filepath.Join(outDir, name+".mp4")
				thumbPath := filepath.Join(outDir, name+".jpg")

				res, err := p.media.Clip(ctx, sourcePath, seg.Start, seg.End, clipPath, thumbPath)
				switch {
				case errors.Is(err, media.ErrZeroDuration):
					p.logger.Warn("skipping zero-length segment",
						"chapter", ci+1, "segment", si+1, "title", seg.Title)
					out.Skipped = true
				case err != nil:
					return fmt.Errorf("clipping chapter %d segment %d: %w", ci+1, si+1, err)
				default:
					out.ClipPath = res.ClipPath
					if res.Thumbnail {
						out.ThumbnailPath = res.ThumbnailPath
					}
				}
				outcomes[slot] = out
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
