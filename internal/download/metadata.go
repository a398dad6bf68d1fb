package download

// Metadata is the subset of yt-dlp's -J output the pipeline consumes.
// yt-dlp emits far more; unknown fields are ignored on decode.
type Metadata struct {
	ID                string                     `json:"id"`
	Title             string                     `json:"title"`
	Description       string                     `json:"description"`
	Duration          float64                    `json:"duration"`
	Uploader          string                     `json:"uploader"`
	Channel           string                     `json:"channel"`
	UploadDate        string                     `json:"upload_date"`
	Thumbnail         string                     `json:"thumbnail"`
	Thumbnails        []Thumbnail                `json:"thumbnails"`
	Subtitles         map[string][]SubtitleTrack `json:"subtitles"`
	AutomaticCaptions map[string][]SubtitleTrack `json:"automatic_captions"`
	Entries           []EntryMetadata            `json:"entries"`
}

// Thumbnail is one entry of the thumbnails list.
type Thumbnail struct {
	URL string `json:"url"`
}

// SubtitleTrack is one subtitle or caption track variant for a language.
type SubtitleTrack struct {
	URL    string `json:"url"`
	Ext    string `json:"ext"`
	Format string `json:"format"`
}

// EntryMetadata is one video inside a flat playlist extraction.
type EntryMetadata struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	URL        string      `json:"url"`
	WebpageURL string      `json:"webpage_url"`
	Duration   float64     `json:"duration"`
	Uploader   string      `json:"uploader"`
	Thumbnail  string      `json:"thumbnail"`
	Thumbnails []Thumbnail `json:"thumbnails"`
}

// BestThumbnail returns the top-level thumbnail URL, falling back to the
// first entry of the thumbnails list.
func (m *Metadata) BestThumbnail() string {
	if m.Thumbnail != "" {
		return m.Thumbnail
	}
	if len(m.Thumbnails) > 0 {
		return m.Thumbnails[0].URL
	}
	return ""
}
