package compiler

import (
	"thirdcoast.systems/mediafetch/internal/preferences"
	"thirdcoast.systems/mediafetch/pkg/ytdlp"
)

// addSubtitleOptions appends the subtitle option set. Embedding is only
// honored when allowEmbed is set; audio downloads always write files.
func addSubtitleOptions(b *ytdlp.Builder, p preferences.Preferences, allowEmbed bool) {
	if p.SubtitleLanguage != "" {
		b.Option("--sub-langs", p.SubtitleLanguage)
	}

	if allowEmbed && p.EmbedSubtitle {
		b.Flag("--embed-subs")
		if p.KeepSubtitle {
			b.Flag("--write-subs")
		}
	} else {
		b.Flag("--write-subs")
	}

	if p.AutoSubtitle {
		b.Flag("--write-auto-subs")
		if !p.AutoTranslatedSubtitles {
			b.Option("--extractor-args", "youtube:skip=translated_subs")
		}
	}

	if p.ConvertSubtitle != "" && p.ConvertSubtitle != "none" {
		b.Option("--convert-subs", p.ConvertSubtitle)
	}
}
