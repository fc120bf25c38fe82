package queue

import (
	"time"

	"github.com/google/uuid"
	"thirdcoast.systems/mediafetch/pkg/utils/format"
	"thirdcoast.systems/mediafetch/pkg/videoinfo"
)

// MediaType is what the user asked to get out of a URL.
type MediaType int

const (
	MediaVideo MediaType = iota
	MediaAudio
)

func (m MediaType) String() string {
	if m == MediaAudio {
		return "audio"
	}
	return "video"
}

// View is the display projection of a task.
type View struct {
	Title     string
	Uploader  string
	Thumbnail string
	Duration  string
	FileSize  string
	Extractor string
}

func newView(info videoinfo.VideoInfo) View {
	uploader := info.Uploader
	if uploader == "" {
		uploader = info.Channel
	}
	v := View{
		Title:     info.Title,
		Uploader:  uploader,
		Thumbnail: info.Thumbnail,
		FileSize:  format.Bytes(info.Size()),
		Extractor: info.ExtractorKey,
	}
	if info.Duration > 0 {
		v.Duration = format.Duration(info.Duration)
	}
	return v
}

// Task is a snapshot of one queue item.
type Task struct {
	ID uuid.UUID
	// URL is what the user submitted; SourceURL is its normalized form.
	URL       string
	SourceURL string
	MediaType MediaType
	State     DownloadState
	View      View

	// PlaylistURL, PlaylistTitle and PlaylistItem are set for items picked
	// from a playlist.
	PlaylistURL   string
	PlaylistTitle string
	PlaylistItem  int

	// Attempt counts runs started, retries included.
	Attempt   int
	CreatedAt time.Time
}
