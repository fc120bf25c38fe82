package format

import (
	"fmt"
	"math"
)

// Duration converts seconds to "M:SS" or "H:MM:SS" clock form. Unknown or
// negative durations render as "0:00".
func Duration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "0:00"
	}
	s := int(seconds)
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// ETA formats a remaining-seconds estimate, or "" when unknown.
func ETA(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	return Duration(float64(seconds))
}
