package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
	"thirdcoast.systems/mediafetch/internal/preferences"
)

func TestVideoSorter(t *testing.T) {
	tests := []struct {
		format preferences.VideoFormat
		res    preferences.VideoResolution
		want   string
	}{
		{preferences.VideoFormatNotSpecified, preferences.ResolutionBest, ""},
		{preferences.VideoFormatQuality, preferences.ResolutionBest, "vcodec:vp9.2"},
		{preferences.VideoFormatCompatibility, preferences.Resolution720, "res:720,proto,vcodec:h264,ext"},
		{preferences.VideoFormatNotSpecified, preferences.ResolutionLowest, "+res"},
		{preferences.VideoFormatNotSpecified, preferences.Resolution2160, "res:2160"},
	}

	for _, tt := range tests {
		p := preferences.Preferences{VideoFormat: tt.format, VideoResolution: tt.res}
		require.Equal(t, tt.want, VideoSorter(p))
	}
}

func TestAudioSorter(t *testing.T) {
	p := preferences.Preferences{AudioFormat: preferences.AudioFormatM4A, AudioQuality: preferences.AudioQualityLow}
	require.Equal(t, "", AudioSorter(p))

	p.UseCustomAudioPreset = true
	require.Equal(t, "acodec:aac,abr~64", AudioSorter(p))

	p.AudioFormat = preferences.AudioFormatNotSpecified
	p.AudioQuality = preferences.AudioQualityBest
	require.Equal(t, "", AudioSorter(p))
}

func TestRateLimit(t *testing.T) {
	require.Equal(t, "1K", rateLimit("1"))
	require.Equal(t, "1000000K", rateLimit("1000000"))
	require.Equal(t, "", rateLimit("1000001"))
	require.Equal(t, "", rateLimit("1.5"))
}

func TestDownloadSection(t *testing.T) {
	require.Equal(t, "*0-5", downloadSection(preferences.Clip{Start: 0, End: 5}))
	require.Equal(t, "*12.345-67.8", downloadSection(preferences.Clip{Start: 12.345, End: 67.8}))
}
