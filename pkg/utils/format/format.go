// Package format holds display helpers shared by the CLI and queue progress
// text.
package format

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Bytes returns a human-readable byte size (e.g. "1.5 MiB"), or "" for
// unknown sizes.
func Bytes(b int64) string {
	if b <= 0 {
		return ""
	}
	return humanize.IBytes(uint64(b))
}

// Speed formats a transfer rate in bytes per second.
func Speed(bytesPerSecond float64) string {
	if bytesPerSecond <= 0 {
		return ""
	}
	return humanize.IBytes(uint64(bytesPerSecond)) + "/s"
}

// Percent formats a 0..1 fraction as "42.0%".
func Percent(fraction float64) string {
	return fmt.Sprintf("%.1f%%", fraction*100)
}

// Truncate returns s truncated to max runes with "..." suffix.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max || max < 4 {
		return s
	}
	return string(r[:max-3]) + "..."
}
