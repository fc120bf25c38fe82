package compiler

import (
	"strconv"
	"strings"

	"thirdcoast.systems/mediafetch/internal/preferences"
)

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// VideoSorter derives the -S value from the resolution cap and codec
// preference. It returns "" when neither is set.
func VideoSorter(p preferences.Preferences) string {
	res := ""
	switch {
	case p.VideoResolution == preferences.ResolutionLowest:
		res = "+res"
	case p.VideoResolution.Height() > 0:
		res = "res:" + strconv.Itoa(p.VideoResolution.Height())
	}

	codec := ""
	switch p.VideoFormat {
	case preferences.VideoFormatCompatibility:
		codec = "proto,vcodec:h264,ext"
	case preferences.VideoFormatQuality:
		codec = "vcodec:vp9.2"
	}

	return joinNonEmpty(",", res, codec)
}

// AudioSorter derives the -S value of the custom audio preset. It returns ""
// when the preset is off.
func AudioSorter(p preferences.Preferences) string {
	if !p.UseCustomAudioPreset {
		return ""
	}

	codec := ""
	switch p.AudioFormat {
	case preferences.AudioFormatOpus:
		codec = "acodec:opus"
	case preferences.AudioFormatM4A:
		codec = "acodec:aac"
	}

	abr := ""
	if b := p.AudioQuality.Bitrate(); b > 0 {
		abr = "abr~" + strconv.Itoa(b)
	}

	return joinNonEmpty(",", codec, abr)
}

// rateLimit returns the -r value, or "" when the configured rate is not an
// integer in [1, 1000000].
func rateLimit(raw string) string {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > 1_000_000 {
		return ""
	}
	return strconv.Itoa(n) + "K"
}

func audioConvertTarget(f preferences.AudioConvertFormat) string {
	switch f {
	case preferences.ConvertMP3:
		return "mp3"
	case preferences.ConvertM4A:
		return "m4a"
	}
	return ""
}
