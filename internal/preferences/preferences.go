// Package preferences holds the user's download preferences. The record is
// read-only to the plan compiler; Selection Merge derives updated copies.
package preferences

// VideoFormat selects the codec preference of the derived format sorter.
type VideoFormat int

const (
	VideoFormatNotSpecified VideoFormat = iota
	// VideoFormatCompatibility prefers H.264/AAC in MP4 containers.
	VideoFormatCompatibility
	// VideoFormatQuality prefers modern codecs (VP9.2/AV1).
	VideoFormatQuality
)

// VideoResolution caps the preferred video height.
type VideoResolution int

const (
	ResolutionBest VideoResolution = iota
	Resolution2160
	Resolution1440
	Resolution1080
	Resolution720
	Resolution480
	Resolution360
	ResolutionLowest
)

// Height returns the height cap in pixels, or 0 when uncapped/lowest.
func (r VideoResolution) Height() int {
	switch r {
	case Resolution2160:
		return 2160
	case Resolution1440:
		return 1440
	case Resolution1080:
		return 1080
	case Resolution720:
		return 720
	case Resolution480:
		return 480
	case Resolution360:
		return 360
	}
	return 0
}

// AudioFormat is the preferred audio codec of the custom audio preset.
type AudioFormat int

const (
	AudioFormatNotSpecified AudioFormat = iota
	AudioFormatOpus
	AudioFormatM4A
)

// AudioQuality is the preferred bitrate of the custom audio preset.
type AudioQuality int

const (
	AudioQualityBest AudioQuality = iota
	AudioQualityHigh
	AudioQualityMedium
	AudioQualityLow
)

// Bitrate returns the target bitrate in kbps, or 0 for best.
func (q AudioQuality) Bitrate() int {
	switch q {
	case AudioQualityHigh:
		return 192
	case AudioQualityMedium:
		return 128
	case AudioQualityLow:
		return 64
	}
	return 0
}

// AudioConvertFormat is the container audio is converted to.
type AudioConvertFormat int

const (
	ConvertMP3 AudioConvertFormat = iota
	ConvertM4A
)

// Clip is a section of the video to download, in seconds.
type Clip struct {
	Start float64 `mapstructure:"start" json:"start" validate:"gte=0"`
	End   float64 `mapstructure:"end" json:"end" validate:"gtfield=Start"`
}

// Preferences is the full decision space of the plan compiler.
type Preferences struct {
	ExtractAudio     bool `mapstructure:"extract_audio"`
	DownloadPlaylist bool `mapstructure:"download_playlist"`

	// Destination layout.
	SubdirectoryExtractor     bool   `mapstructure:"subdirectory_extractor"`
	SubdirectoryPlaylistTitle bool   `mapstructure:"subdirectory_playlist_title"`
	PrivateDirectory          bool   `mapstructure:"private_directory"`
	SDCardDownload            bool   `mapstructure:"sdcard_download"`
	SDCardPath                string `mapstructure:"sdcard_path" validate:"required_if=SDCardDownload true"`
	PrivateMode               bool   `mapstructure:"private_mode"`

	// Subtitles.
	DownloadSubtitle        bool   `mapstructure:"download_subtitle"`
	EmbedSubtitle           bool   `mapstructure:"embed_subtitle"`
	KeepSubtitle            bool   `mapstructure:"keep_subtitle"`
	AutoSubtitle            bool   `mapstructure:"auto_subtitle"`
	AutoTranslatedSubtitles bool   `mapstructure:"auto_translated_subtitles"`
	SubtitleLanguage        string `mapstructure:"subtitle_language"`
	ConvertSubtitle         string `mapstructure:"convert_subtitle" validate:"omitempty,oneof=none ass lrc srt vtt"`

	// Network.
	ConcurrentFragments int    `mapstructure:"concurrent_fragments" validate:"gte=0,lte=128"`
	Aria2c              bool   `mapstructure:"aria2c"`
	Cookies             bool   `mapstructure:"cookies"`
	UserAgent           string `mapstructure:"user_agent"`
	Proxy               bool   `mapstructure:"proxy"`
	ProxyURL            string `mapstructure:"proxy_url"`
	ForceIPv4           bool   `mapstructure:"force_ipv4"`
	RateLimit           bool   `mapstructure:"rate_limit"`
	MaxDownloadRate     string `mapstructure:"max_download_rate"`
	Debug               bool   `mapstructure:"debug"`

	SponsorBlock           bool   `mapstructure:"sponsorblock"`
	SponsorBlockCategories string `mapstructure:"sponsorblock_categories"`

	// Audio.
	UseCustomAudioPreset bool               `mapstructure:"use_custom_audio_preset"`
	AudioFormat          AudioFormat        `mapstructure:"audio_format" validate:"gte=0,lte=2"`
	AudioQuality         AudioQuality       `mapstructure:"audio_quality" validate:"gte=0,lte=3"`
	ConvertAudio         bool               `mapstructure:"convert_audio"`
	AudioConvertFormat   AudioConvertFormat `mapstructure:"audio_convert_format" validate:"gte=0,lte=1"`
	CropArtwork          bool               `mapstructure:"crop_artwork"`

	// Video.
	FormatSorting    bool            `mapstructure:"format_sorting"`
	SortingFields    string          `mapstructure:"sorting_fields"`
	VideoFormat      VideoFormat     `mapstructure:"video_format" validate:"gte=0,lte=2"`
	VideoResolution  VideoResolution `mapstructure:"video_resolution" validate:"gte=0,lte=7"`
	MergeAudioStream bool            `mapstructure:"merge_audio_stream"`
	MergeToMkv       bool            `mapstructure:"merge_to_mkv"`

	// Post-processing.
	EmbedThumbnail  bool `mapstructure:"embed_thumbnail"`
	EmbedMetadata   bool `mapstructure:"embed_metadata"`
	CreateThumbnail bool `mapstructure:"create_thumbnail"`

	// Per-download selections.
	VideoClips     []Clip `mapstructure:"video_clips" validate:"dive"`
	SplitByChapter bool   `mapstructure:"split_by_chapter"`
	NewTitle       string `mapstructure:"new_title"`
	FormatIDString string `mapstructure:"format_id_string"`

	OutputTemplate     string `mapstructure:"output_template"`
	UseDownloadArchive bool   `mapstructure:"use_download_archive"`
	RestrictFilenames  bool   `mapstructure:"restrict_filenames"`

	// CommandTemplate is the user's yt-dlp config text for custom commands.
	CommandTemplate string `mapstructure:"command_template"`
}

// Default returns the preferences a fresh installation starts with.
func Default() Preferences {
	return Preferences{
		ConcurrentFragments:    1,
		SponsorBlockCategories: "default",
		VideoFormat:            VideoFormatQuality,
		VideoResolution:        ResolutionBest,
		ConvertSubtitle:        "none",
		SubtitleLanguage:       "en.*,.*-orig",
		EmbedMetadata:          true,
		MaxDownloadRate:        "1000",
	}
}

// Clone returns a deep copy.
func (p Preferences) Clone() Preferences {
	p.VideoClips = append([]Clip(nil), p.VideoClips...)
	return p
}
