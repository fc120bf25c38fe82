package history

import (
	"time"

	"github.com/google/uuid"
	"thirdcoast.systems/mediafetch/internal/videoid"
	"thirdcoast.systems/mediafetch/pkg/videoinfo"
)

// Record is one completed download.
type Record struct {
	ID           uuid.UUID
	URL          string
	Title        string
	Uploader     string
	ExtractorKey string
	VideoID      string
	FilePath     string
	PathHint     string
	Thumbnail    string
	Duration     float64
	FileSize     int64
	Info         videoinfo.VideoInfo
	DownloadedAt time.Time
}

// NewRecord builds the record for a finished download. The ID is stable for
// the (source, video) pair, so downloading the same video again replaces the
// earlier row.
func NewRecord(info videoinfo.VideoInfo, filePath, pathHint string, at time.Time) Record {
	uploader := info.Uploader
	if uploader == "" {
		uploader = info.Channel
	}
	return Record{
		ID:           videoid.RecordID(info.ExtractorKey, info.WebpageURL, info.ID),
		URL:          info.URL(),
		Title:        info.Title,
		Uploader:     uploader,
		ExtractorKey: info.ExtractorKey,
		VideoID:      info.ID,
		FilePath:     filePath,
		PathHint:     pathHint,
		Thumbnail:    info.Thumbnail,
		Duration:     info.Duration,
		FileSize:     info.Size(),
		Info:         info,
		DownloadedAt: at.UTC().Truncate(time.Millisecond),
	}
}
