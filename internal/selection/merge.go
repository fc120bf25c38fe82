// Package selection reconciles manual picks from a format chooser with the
// base preferences, and projects playlist picks into item views.
package selection

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"thirdcoast.systems/mediafetch/internal/preferences"
	"thirdcoast.systems/mediafetch/pkg/videoinfo"
)

// Input is everything the user picked for one video.
type Input struct {
	Preferences    preferences.Preferences
	Info           videoinfo.VideoInfo
	Formats        []videoinfo.Format
	Clips          []preferences.Clip
	SplitByChapter bool
	NewTitle       string
	Subtitles      []string
	AutoCaptions   []string
}

// Result is the merged view handed to the plan compiler.
type Result struct {
	Info        videoinfo.VideoInfo
	Preferences preferences.Preferences

	// AudioOnly and Video classify the chosen formats for display.
	AudioOnly []videoinfo.Format
	Video     []videoinfo.Format
}

// Merge folds the selection in. It is pure; format IDs keep the order in
// which they were supplied.
func Merge(in Input) Result {
	p := in.Preferences.Clone()
	info := in.Info

	res := Result{}
	ids := make([]string, 0, len(in.Formats))
	var total int64
	hasVideo := false

	for _, f := range in.Formats {
		ids = append(ids, f.FormatID)
		total += f.Size()

		if f.ContainsVideo() {
			hasVideo = true
			res.Video = append(res.Video, f)
		} else if f.IsAudioOnly() {
			res.AudioOnly = append(res.AudioOnly, f)
		}
	}

	if len(in.Formats) > 0 {
		p.FormatIDString = strings.Join(ids, "+")
		if !hasVideo && len(res.AudioOnly) > 0 {
			p.ExtractAudio = true
		}
		if len(res.AudioOnly) > 1 {
			p.MergeAudioStream = true
		}
		if total > 0 {
			info = info.WithSize(total)
		}
	}

	if title := strings.TrimSpace(in.NewTitle); title != "" {
		title = norm.NFC.String(title)
		p.NewTitle = title
		info = info.WithTitle(title)
	}

	p.VideoClips = append([]preferences.Clip(nil), in.Clips...)
	p.SplitByChapter = in.SplitByChapter

	langs := make([]string, 0, len(in.Subtitles)+len(in.AutoCaptions))
	langs = append(langs, in.Subtitles...)
	langs = append(langs, in.AutoCaptions...)
	if len(langs) > 0 {
		p.SubtitleLanguage = strings.Join(langs, ",")
		if !p.EmbedSubtitle {
			p.DownloadSubtitle = true
		}
	}
	if len(in.AutoCaptions) > 0 {
		p.AutoSubtitle = true
	}

	res.Info = info
	res.Preferences = p
	return res
}
