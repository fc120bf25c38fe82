package videoinfo

import "encoding/json"

// PlaylistResult is the flat-playlist dump of a playlist. Entries are in
// playlist order; callers address them with 1-based indices.
type PlaylistResult struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Channel    string          `json:"channel"`
	Uploader   string          `json:"uploader"`
	WebpageURL string          `json:"webpage_url"`
	Entries    []PlaylistEntry `json:"entries"`
}

// PlaylistEntry is one flat entry. Unavailable videos commonly have most
// fields empty.
type PlaylistEntry struct {
	ID         string      `json:"id"`
	URL        string      `json:"url"`
	Title      string      `json:"title"`
	Uploader   string      `json:"uploader"`
	Channel    string      `json:"channel"`
	Duration   float64     `json:"duration"`
	Thumbnails []Thumbnail `json:"thumbnails"`
}

// Thumbnail is one entry of a thumbnail list. yt-dlp orders them from
// lowest to highest preference.
type Thumbnail struct {
	URL    string  `json:"url"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewPlaylistResult parses a --flat-playlist --dump-single-json document.
func NewPlaylistResult(data []byte) (PlaylistResult, error) {
	var p PlaylistResult
	err := json.Unmarshal(data, &p)
	return p, err
}

// Entry returns the entry at 1-based index i.
func (p PlaylistResult) Entry(i int) (PlaylistEntry, bool) {
	if i < 1 || i > len(p.Entries) {
		return PlaylistEntry{}, false
	}
	return p.Entries[i-1], true
}

// BestThumbnail returns the last thumbnail URL, or "".
func (e PlaylistEntry) BestThumbnail() string {
	if len(e.Thumbnails) == 0 {
		return ""
	}
	return e.Thumbnails[len(e.Thumbnails)-1].URL
}
