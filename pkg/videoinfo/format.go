package videoinfo

import "strings"

// Format is one selectable stream from the source's format catalog.
type Format struct {
	FormatID       string  `json:"format_id"`
	FormatNote     string  `json:"format_note"`
	Ext            string  `json:"ext"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	TBR            float64 `json:"tbr"`
	Height         float64 `json:"height"`
	Resolution     string  `json:"resolution"`
	Language       string  `json:"language"`
	FileSize       float64 `json:"filesize"`
	FileSizeApprox float64 `json:"filesize_approx"`
}

func hasCodec(codec string) bool {
	c := strings.TrimSpace(codec)
	return c != "" && c != "none"
}

// ContainsVideo reports whether the format has a video stream.
func (f Format) ContainsVideo() bool { return hasCodec(f.VCodec) }

// ContainsAudio reports whether the format has an audio stream.
func (f Format) ContainsAudio() bool { return hasCodec(f.ACodec) }

// IsAudioOnly is ContainsAudio without ContainsVideo.
func (f Format) IsAudioOnly() bool { return f.ContainsAudio() && !f.ContainsVideo() }

// IsVideoOnly is ContainsVideo without ContainsAudio.
func (f Format) IsVideoOnly() bool { return f.ContainsVideo() && !f.ContainsAudio() }

// Size returns the exact size when known, else the approximation.
func (f Format) Size() int64 {
	if f.FileSize > 0 {
		return int64(f.FileSize)
	}
	return int64(f.FileSizeApprox)
}
