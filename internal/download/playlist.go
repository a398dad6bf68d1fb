package download

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var playlistURLRe = regexp.MustCompile(`[?&]list=`)

// IsPlaylistURL reports whether a URL addresses a playlist rather than a
// single video.
func IsPlaylistURL(url string) bool {
	return playlistURLRe.MatchString(url)
}

// PlaylistEntry is one video of an extracted playlist.
type PlaylistEntry struct {
	ID           string
	Title        string
	URL          string
	Duration     float64
	Uploader     string
	ThumbnailURL string
}

// PlaylistInfo is the flat extraction of a playlist: entry metadata only,
// nothing downloaded.
type PlaylistInfo struct {
	ID      string
	Title   string
	Entries []PlaylistEntry
}

// Playlist extracts playlist metadata in simulate mode. Entries without a
// resolvable id are dropped rather than failing the whole extraction.
func (d *Downloader) Playlist(ctx context.Context, url string) (*PlaylistInfo, error) {
	res := d.runner.Run(ctx, d.bin, []string{"--ignore-config", "-s", "-J", url}, d.probeTimeout)
	if !res.OK {
		return nil, fmt.Errorf("%w for %s: %s", ErrProbeFailed, url, strings.TrimSpace(res.Stderr))
	}
	var meta Metadata
	if err := json.Unmarshal([]byte(res.Stdout), &meta); err != nil {
		return nil, fmt.Errorf("%w for %s: decode: %v", ErrProbeFailed, url, err)
	}

	info := &PlaylistInfo{ID: meta.ID, Title: meta.Title}
	if info.ID == "" {
		info.ID = fmt.Sprintf("pl_%d", time.Now().UnixMilli())
	}
	if info.Title == "" {
		info.Title = "Playlist"
	}
	for _, e := range meta.Entries {
		entry, ok := toPlaylistEntry(e)
		if !ok {
			d.logger.Warn("skipping playlist entry without id", "playlist", info.ID)
			continue
		}
		info.Entries = append(info.Entries, entry)
	}
	return info, nil
}

func toPlaylistEntry(e EntryMetadata) (PlaylistEntry, bool) {
	if e.ID == "" {
		return PlaylistEntry{}, false
	}
	url := e.WebpageURL
	if url == "" {
		url = e.URL
	}
	if url == "" {
		url = "https://www.youtube.com/watch?v=" + e.ID
	}
	title := e.Title
	if title == "" {
		title = "Untitled"
	}
	thumb := e.Thumbnail
	if thumb == "" && len(e.Thumbnails) > 0 {
		thumb = e.Thumbnails[0].URL
	}
	return PlaylistEntry{
		ID:           e.ID,
		Title:        title,
		URL:          url,
		Duration:     e.Duration,
		Uploader:     e.Uploader,
		ThumbnailURL: thumb,
	}, true
}
