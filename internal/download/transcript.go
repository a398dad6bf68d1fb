package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// transcript responses are capped to keep a hostile track from ballooning
// memory; real VTT files are a few hundred KB at most.
const maxTranscriptSize = 20 * 1024 * 1024

// Transcript fetches the best available subtitle track for url as raw
// WEBVTT text. Manually authored subtitles win over automatic captions,
// preferred languages are tried in order, and within a language a VTT
// variant is preferred. Returns ErrNoTranscript when nothing matches.
func (d *Downloader) Transcript(ctx context.Context, url string) (string, error) {
	meta, err := d.Probe(ctx, url)
	if err != nil {
		return "", err
	}

	trackURL := d.pickTrack(meta.Subtitles)
	if trackURL == "" {
		trackURL = d.pickTrack(meta.AutomaticCaptions)
	}
	if trackURL == "" {
		return "", fmt.Errorf("%w for %s", ErrNoTranscript, url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return "", fmt.Errorf("transcript request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch transcript: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTranscriptSize))
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("%w for %s: empty track", ErrNoTranscript, url)
	}
	return string(body), nil
}

// pickTrack selects a track URL from a language-keyed track map. The
// preferred languages are scanned in order; failing that, any language in
// sorted key order, so the choice is deterministic.
func (d *Downloader) pickTrack(tracks map[string][]SubtitleTrack) string {
	for _, lang := range d.transcriptLangs {
		if url := bestVariant(tracks[lang]); url != "" {
			return url
		}
	}
	keys := make([]string, 0, len(tracks))
	for k := range tracks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if url := bestVariant(tracks[k]); url != "" {
			return url
		}
	}
	return ""
}

func bestVariant(variants []SubtitleTrack) string {
	for _, v := range variants {
		kind := strings.ToLower(v.Ext)
		if kind == "" {
			kind = strings.ToLower(v.Format)
		}
		if strings.Contains(kind, "vtt") && v.URL != "" {
			return v.URL
		}
	}
	for _, v := range variants {
		if v.URL != "" {
			return v.URL
		}
	}
	return ""
}
