package sponsorblock

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// removable lists the categories --sponsorblock-remove accepts, in yt-dlp's
// order. poi_highlight and chapter can only be marked.
var removable = []string{
	"sponsor", "intro", "outro", "selfpromo", "preview", "filler", "interaction", "music_offtopic",
}

// Categories expands a --sponsorblock-remove value. "all" is every removable
// category, "default" is all but filler, and a leading "-" drops a category.
// Unknown names are ignored.
func Categories(raw string) []string {
	set := map[string]bool{}
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		drop := strings.HasPrefix(tok, "-")
		tok = strings.TrimPrefix(tok, "-")

		var names []string
		switch tok {
		case "all":
			names = removable
		case "default":
			names = slices.DeleteFunc(slices.Clone(removable), func(c string) bool { return c == "filler" })
		default:
			if slices.Contains(removable, tok) {
				names = []string{tok}
			}
		}
		for _, n := range names {
			set[n] = !drop
		}
	}

	out := make([]string, 0, len(set))
	for _, c := range removable {
		if set[c] {
			out = append(out, c)
		}
	}
	return out
}

// Cut is one span yt-dlp will remove.
type Cut struct {
	Category string
	Title    string
	Start    float64
	End      float64
}

// Duration is End-Start.
func (c Cut) Duration() float64 { return c.End - c.Start }

// Cuts converts skip segments to cuts ordered by start. Malformed segments
// are dropped.
func Cuts(segments []SkipSegment) []Cut {
	out := make([]Cut, 0, len(segments))
	for _, s := range segments {
		if len(s.Segment) < 2 || s.Segment[1] <= s.Segment[0] {
			continue
		}
		out = append(out, Cut{
			Category: s.Category,
			Title:    FormatSegmentTitle(s.Category),
			Start:    s.Segment[0],
			End:      s.Segment[1],
		})
	}
	slices.SortFunc(out, func(a, b Cut) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})
	return out
}

// Removed returns the seconds cut, counting overlapping spans once.
func Removed(cuts []Cut) float64 {
	var total, reach float64
	for _, c := range cuts {
		start := max(c.Start, reach)
		if c.End > start {
			total += c.End - start
		}
		reach = max(reach, c.End)
	}
	return total
}

// FormatSegmentTitle creates a human-readable title for a category.
func FormatSegmentTitle(category string) string {
	name := strings.ReplaceAll(category, "_", " ")
	return cases.Title(language.AmericanEnglish).String(name)
}
