package main

import (
	"fmt"
	"strconv"
	"strings"

	"thirdcoast.systems/mediafetch/internal/preferences"
	"thirdcoast.systems/mediafetch/pkg/videoinfo"
)

// parseIndices parses 1-based playlist indices such as "1,3-5,9".
func parseIndices(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || start < 1 {
			return nil, fmt.Errorf("invalid playlist index %q", part)
		}
		end := start
		if isRange {
			end, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || end < start {
				return nil, fmt.Errorf("invalid playlist range %q", part)
			}
		}
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no playlist indices in %q", s)
	}
	return out, nil
}

// parseClip parses "start-end" in seconds.
func parseClip(s string) (preferences.Clip, error) {
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return preferences.Clip{}, fmt.Errorf("invalid clip %q, want start-end", s)
	}
	start, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return preferences.Clip{}, fmt.Errorf("invalid clip start %q: %w", lo, err)
	}
	end, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return preferences.Clip{}, fmt.Errorf("invalid clip end %q: %w", hi, err)
	}
	if start < 0 || end <= start {
		return preferences.Clip{}, fmt.Errorf("invalid clip %q, end must follow start", s)
	}
	return preferences.Clip{Start: start, End: end}, nil
}

// pickFormats resolves format IDs against the catalog, keeping the given
// order.
func pickFormats(info videoinfo.VideoInfo, ids []string) ([]videoinfo.Format, error) {
	out := make([]videoinfo.Format, 0, len(ids))
	for _, id := range ids {
		found := false
		for _, f := range info.Formats {
			if f.FormatID == id {
				out = append(out, f)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("format %q not offered for %s", id, info.ID)
		}
	}
	return out, nil
}

// shellJoin renders args for display, quoting the ones a shell would split.
func shellJoin(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\n'\"\\$*?[]{}()|&;<>#%~") {
			parts[i] = strconv.Quote(a)
		} else {
			parts[i] = a
		}
	}
	return strings.Join(parts, " ")
}
