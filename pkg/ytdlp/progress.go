package ytdlp

import (
	"regexp"
	"strconv"
	"strings"
)

// yt-dlp --newline output examples:
//
//	[download]   3.4% of   64.00MiB at    1.23MiB/s ETA 00:50
//	[download]  45.2% of ~  85.49MiB at    2.48MiB/s ETA 00:27 (frag 4/17)
//	[download] Destination: Video Title [id].webm
//	[ExtractAudio] Destination: file.mp3
//	[Merger] Merging formats into "Video Title [id].mkv"
var (
	reProgress = regexp.MustCompile(
		`\[download\]\s+` +
			`([\d.]+)%` + // percentage
			`\s+of\s+~?\s*([\d.]+\s*\w+)` + // total size
			`(?:\s+at\s+([\d.]+\s*\w+/s))?` + // speed
			`(?:\s+ETA\s+([\d:]+))?`) // ETA

	reDestination = regexp.MustCompile(`^(?:\[[^\]]+\]\s*)?Destination:\s*(.+)$`)
	reMerger      = regexp.MustCompile(`^\[Merger\]\s*Merging formats into "(.+)"$`)
)

// Progress is one parsed progress line.
type Progress struct {
	// Fraction is in [0, 1].
	Fraction float64
	Size     string
	Speed    string
	ETA      string
}

// ParseProgress extracts download progress from a single stdout line.
func ParseProgress(line string) (Progress, bool) {
	m := reProgress.FindStringSubmatch(line)
	if m == nil {
		return Progress{}, false
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Progress{}, false
	}
	if pct > 100 {
		pct = 100
	}
	return Progress{
		Fraction: pct / 100,
		Size:     strings.TrimSpace(m[2]),
		Speed:    strings.TrimSpace(m[3]),
		ETA:      m[4],
	}, true
}

// DestinationPath returns the path of the last "Destination:" or merge
// announcement in lines, or "". Later announcements win: multi-stream
// downloads announce each component stream, which the merger then replaces
// and deletes.
func DestinationPath(lines []string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if m := reMerger.FindStringSubmatch(line); m != nil {
			return m[1]
		}
		if m := reDestination.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
