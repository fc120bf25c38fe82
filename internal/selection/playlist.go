package selection

import (
	"strconv"

	"thirdcoast.systems/mediafetch/pkg/utils/format"
	"thirdcoast.systems/mediafetch/pkg/videoinfo"
)

// ItemView is the display projection of one playlist entry.
type ItemView struct {
	Title     string
	Uploader  string
	Thumbnail string
	URL       string
	Duration  string
}

// IndexedItem pairs a view with its 1-based playlist index.
type IndexedItem struct {
	Index int
	Item  ItemView
}

// MapPlaylist projects the chosen 1-based indices. Indices that do not
// resolve to an entry are dropped.
func MapPlaylist(result videoinfo.PlaylistResult, indices []int) []IndexedItem {
	out := make([]IndexedItem, 0, len(indices))
	for _, i := range indices {
		entry, ok := result.Entry(i)
		if !ok {
			continue
		}
		out = append(out, IndexedItem{Index: i, Item: itemView(result, entry, i)})
	}
	return out
}

func itemView(result videoinfo.PlaylistResult, e videoinfo.PlaylistEntry, index int) ItemView {
	title := e.Title
	if title == "" {
		title = result.Title + " - " + strconv.Itoa(index)
	}

	uploader := e.Uploader
	if uploader == "" {
		uploader = e.Channel
	}
	if uploader == "" {
		uploader = result.Channel
	}

	v := ItemView{
		Title:     title,
		Uploader:  uploader,
		Thumbnail: e.BestThumbnail(),
		URL:       e.URL,
	}
	if e.Duration > 0 {
		v.Duration = format.Duration(e.Duration)
	}
	return v
}
