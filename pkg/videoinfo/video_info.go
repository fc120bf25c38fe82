package videoinfo

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ============================================================================
// VIDEO INFO - the subset of yt-dlp's -J output that download planning needs.
// Zero values mean "not present". Raw JSON is preserved so records written to
// the history store keep fields that are not modelled here.
// ============================================================================

// VideoInfo contains parsed metadata for a single video.
type VideoInfo struct {
	raw json.RawMessage `json:"-"`

	ID           string `json:"id"`
	Title        string `json:"title"`
	OriginalURL  string `json:"original_url"`
	WebpageURL   string `json:"webpage_url"`
	Extractor    string `json:"extractor"`
	ExtractorKey string `json:"extractor_key"`

	Uploader  string  `json:"uploader"`
	Channel   string  `json:"channel"`
	Duration  float64 `json:"duration"`
	Thumbnail string  `json:"thumbnail"`

	// Selected format as reported by yt-dlp.
	VCodec string `json:"vcodec"`
	ACodec string `json:"acodec"`
	Ext    string `json:"ext"`

	// Playlist context, present when the video was resolved from a playlist.
	Playlist      string `json:"playlist"`
	PlaylistIndex int    `json:"playlist_index"`

	FileSize       float64 `json:"filesize"`
	FileSizeApprox float64 `json:"filesize_approx"`

	RequestedFormats   []Format            `json:"requested_formats"`
	RequestedDownloads []RequestedDownload `json:"requested_downloads"`
	Formats            []Format            `json:"formats"`
}

// RequestedDownload describes a file yt-dlp produced or will produce.
type RequestedDownload struct {
	FilePath string `json:"filepath"`
	Filename string `json:"_filename"`
	Ext      string `json:"ext"`
}

// NewVideoInfo parses raw yt-dlp JSON, preserving the original bytes.
func NewVideoInfo(data []byte) (VideoInfo, error) {
	var v VideoInfo
	v.raw = append(json.RawMessage(nil), data...)
	if err := json.Unmarshal(data, &v); err != nil {
		return v, err
	}
	return v, nil
}

// RawJSON returns the original JSON bytes, or a re-encoding when the value
// was built in code.
func (v VideoInfo) RawJSON() []byte {
	if len(v.raw) > 0 {
		return v.raw
	}
	b, _ := json.Marshal(v)
	return b
}

// Scan implements sql.Scanner so history rows can carry the info blob.
func (v *VideoInfo) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	var b []byte
	switch t := value.(type) {
	case []byte:
		b = t
	case string:
		b = []byte(t)
	default:
		return fmt.Errorf("VideoInfo.Scan: expected []byte, got %T", value)
	}
	v.raw = append(json.RawMessage(nil), b...)
	return json.Unmarshal(b, v)
}

// Value implements driver.Valuer. The JSON is stored as text so both the
// Postgres and SQLite history stores keep it in a TEXT column.
func (v VideoInfo) Value() (driver.Value, error) {
	return string(v.RawJSON()), nil
}

// URL returns the best URL to hand back to yt-dlp.
func (v VideoInfo) URL() string {
	if v.OriginalURL != "" {
		return v.OriginalURL
	}
	return v.WebpageURL
}

// IsAudioOnly reports whether the selected format carries no video stream.
func (v VideoInfo) IsAudioOnly() bool {
	return strings.TrimSpace(v.VCodec) == "none"
}

// Size returns the exact file size when known, else the approximation.
func (v VideoInfo) Size() int64 {
	if v.FileSize > 0 {
		return int64(v.FileSize)
	}
	return int64(v.FileSizeApprox)
}

// ArchiveKey returns the download-archive entry yt-dlp writes for this video:
// "<lowercase extractor key> <id>".
func (v VideoInfo) ArchiveKey() string {
	extractor := v.ExtractorKey
	if extractor == "" {
		extractor = v.Extractor
	}
	return strings.ToLower(extractor) + " " + v.ID
}

// WithTitle returns a copy with the title replaced. The copy no longer
// carries the original JSON.
func (v VideoInfo) WithTitle(title string) VideoInfo {
	v.raw = nil
	v.Title = title
	return v
}

// WithSize returns a copy reporting an exact file size of n bytes.
func (v VideoInfo) WithSize(n int64) VideoInfo {
	v.raw = nil
	v.FileSize = float64(n)
	return v
}
