// Package compiler turns preferences and video metadata into yt-dlp plans.
// Everything here is pure: no I/O, no errors, same input gives the same plan.
package compiler

import (
	"strconv"

	"thirdcoast.systems/mediafetch/internal/preferences"
	"thirdcoast.systems/mediafetch/pkg/videoinfo"
	"thirdcoast.systems/mediafetch/pkg/ytdlp"
)

const cropArtworkArgs = `ThumbnailsConvertor+FFmpeg_o:-c:v mjpeg -vf crop="'if(gt(ih,iw),iw,ih)':'if(gt(iw,ih),ih,iw)'"`

func addAria2c(b *ytdlp.Builder) {
	b.Option("--downloader", "aria2c")
	b.Option("--downloader-args", "aria2c:-x 16 -k 1M")
}

func addCookies(b *ytdlp.Builder, p preferences.Preferences) {
	b.MarkNeedsCookies()
	if p.UserAgent != "" {
		b.Option("--add-header", "User-Agent:"+p.UserAgent)
	}
}

// BuildDownloadPlan compiles a download plan. playlistURL is empty and
// playlistItem is 0 for a standalone video.
func BuildDownloadPlan(info videoinfo.VideoInfo, p preferences.Preferences, playlistURL string, playlistItem int) *ytdlp.Plan {
	b := ytdlp.NewDownloadBuilder()

	b.Flag("--no-mtime")

	if p.Cookies {
		addCookies(b, p)
	}
	if p.RestrictFilenames {
		b.Flag("--restrict-filenames")
	}
	if p.Proxy && p.ProxyURL != "" {
		b.Option("--proxy", p.ProxyURL)
	}
	if p.ForceIPv4 {
		b.Flag("-4")
	}
	if p.Debug {
		b.Flag("-v")
	}
	if p.RateLimit {
		if rate := rateLimit(p.MaxDownloadRate); rate != "" {
			b.Option("-r", rate)
		}
	}

	prefix := ""
	if playlistItem != 0 && p.DownloadPlaylist {
		b.Option("--playlist-items", strconv.Itoa(playlistItem))
		if p.SubdirectoryPlaylistTitle && info.Playlist != "" {
			prefix = playlistSegment
		}
	} else {
		b.Flag("--no-playlist")
	}

	if p.Aria2c {
		addAria2c(b)
	} else if p.ConcurrentFragments > 1 {
		b.Option("--concurrent-fragments", strconv.Itoa(p.ConcurrentFragments))
	}

	if p.ExtractAudio || info.VCodec == "none" {
		addAudioOptions(b, p, playlistURL)
	} else {
		addVideoOptions(b, p)
	}

	if p.SponsorBlock {
		categories := p.SponsorBlockCategories
		if categories == "" {
			categories = "default"
		}
		b.Option("--sponsorblock-remove", categories)
	}
	if p.CreateThumbnail {
		b.Flag("--write-thumbnail")
		if !b.Has("--convert-thumbnails") {
			b.Option("--convert-thumbnails", "png")
		}
	}

	for _, clip := range p.VideoClips {
		b.Option("--download-sections", downloadSection(clip))
	}

	if p.NewTitle != "" {
		b.Option("--replace-in-metadata", "title", ".+", p.NewTitle)
	}

	if p.SplitByChapter {
		b.Flag("--split-chapters")
	}

	b.OutputTemplate = resolveTemplate(p, prefix)

	if p.UseDownloadArchive {
		b.MarkNeedsArchive()
	}

	return b.Build()
}

func addAudioOptions(b *ytdlp.Builder, p preferences.Preferences, playlistURL string) {
	b.Flag("-x")

	if p.DownloadSubtitle {
		addSubtitleOptions(b, p, false)
	}

	convert := audioConvertTarget(p.AudioConvertFormat)
	switch {
	case p.FormatIDString != "":
		b.Option("-f", p.FormatIDString)
	case p.ConvertAudio && convert != "":
		b.Option("--audio-format", convert)
	default:
		if sorter := AudioSorter(p); sorter != "" {
			b.Option("-S", sorter)
		}
	}

	if p.EmbedMetadata {
		b.Flag("--embed-metadata")
		b.Flag("--embed-thumbnail")
		b.Option("--convert-thumbnails", "jpg")
		if p.CropArtwork {
			b.Option("--ppa", cropArtworkArgs)
		}

		if playlistURL != "" {
			b.Option("--parse-metadata", "%(album,playlist,title)s:%(meta_album)s")
			b.Option("--parse-metadata", "%(track_number,playlist_index)d:%(meta_track)s")
		} else {
			b.Option("--parse-metadata", "%(album,title)s:%(meta_album)s")
			b.Option("--parse-metadata", "%(track_number|)s:%(meta_track)s")
		}
	}

	b.DownloadPathHint = ytdlp.PathHintAudio
}

func addVideoOptions(b *ytdlp.Builder, p preferences.Preferences) {
	b.Flag("--add-metadata")
	b.Flag("--no-embed-info-json")

	if p.FormatIDString != "" {
		b.Option("-f", p.FormatIDString)
		if p.MergeAudioStream {
			b.Flag("--audio-multistreams")
		}
	} else {
		sorter := VideoSorter(p)
		if p.FormatSorting && p.SortingFields != "" {
			sorter = p.SortingFields
		}
		if sorter != "" {
			b.Option("-S", sorter)
		}
	}

	if p.DownloadSubtitle || p.EmbedSubtitle {
		addSubtitleOptions(b, p, true)
	}

	if p.MergeToMkv {
		b.Option("--remux-video", "mkv")
	}
	if p.EmbedThumbnail {
		b.Flag("--embed-thumbnail")
	}
	if len(p.VideoClips) == 0 {
		b.Flag("--embed-chapters")
	}

	b.DownloadPathHint = ytdlp.PathHintVideo
}
