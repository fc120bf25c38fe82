package compiler

import (
	"strconv"
	"strings"

	"thirdcoast.systems/mediafetch/internal/preferences"
)

const (
	DefaultOutputTemplate = "%(title).200B.%(ext)s"
	ClipOutputTemplate    = "%(title).200B [%(section_start)d-%(section_end)d].%(ext)s"
	ChapterOutputTemplate = "chapter:%(title).200B/%(section_number)d - %(section_title).200B.%(ext)s"

	playlistSegment = "%(playlist)s/"
	chapterPrefix   = "chapter:"
)

// withPrefix inserts the directory prefix, keeping a leading output-type
// selector such as "chapter:" in front.
func withPrefix(prefix, template string) string {
	if prefix == "" {
		return template
	}
	if strings.HasPrefix(template, chapterPrefix) {
		return chapterPrefix + prefix + strings.TrimPrefix(template, chapterPrefix)
	}
	return prefix + template
}

// resolveTemplate picks chapter > clip > override > default.
func resolveTemplate(p preferences.Preferences, prefix string) string {
	switch {
	case p.SplitByChapter:
		return withPrefix(prefix, ChapterOutputTemplate)
	case len(p.VideoClips) > 0:
		return withPrefix(prefix, ClipOutputTemplate)
	case p.OutputTemplate != "":
		return withPrefix(prefix, p.OutputTemplate)
	}
	return withPrefix(prefix, DefaultOutputTemplate)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// downloadSection renders a clip as a --download-sections value.
func downloadSection(c preferences.Clip) string {
	return "*" + formatSeconds(c.Start) + "-" + formatSeconds(c.End)
}
