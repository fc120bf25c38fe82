package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"thirdcoast.systems/mediafetch/internal/compiler"
	"thirdcoast.systems/mediafetch/internal/preferences"
	"thirdcoast.systems/mediafetch/internal/selection"
	"thirdcoast.systems/mediafetch/pkg/videoinfo"
)

// selectionFlags are the per-download picks shared by plan and download.
type selectionFlags struct {
	audio        bool
	formats      []string
	clips        []string
	chapters     bool
	title        string
	subtitles    []string
	autoCaptions []string
}

func (s *selectionFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVarP(&s.audio, "audio", "x", false, "Extract audio only")
	f.StringSliceVarP(&s.formats, "format", "f", nil, "Format IDs to download, in order")
	f.StringArrayVar(&s.clips, "clip", nil, "Download only start-end seconds (repeatable)")
	f.BoolVar(&s.chapters, "split-chapters", false, "Split the output by chapter")
	f.StringVar(&s.title, "title", "", "Replace the title in metadata and file name")
	f.StringSliceVar(&s.subtitles, "sub", nil, "Subtitle languages to fetch")
	f.StringSliceVar(&s.autoCaptions, "auto-sub", nil, "Automatic caption languages to fetch")
}

func (s *selectionFlags) any() bool {
	return len(s.formats) > 0 || len(s.clips) > 0 || s.chapters || s.title != "" ||
		len(s.subtitles) > 0 || len(s.autoCaptions) > 0
}

// merge folds the flags into p for info.
func (s *selectionFlags) merge(p preferences.Preferences, info videoinfo.VideoInfo) (selection.Result, error) {
	if s.audio {
		p.ExtractAudio = true
	}
	if !s.any() {
		return selection.Result{Info: info, Preferences: p}, nil
	}
	in := selection.Input{
		Preferences:    p,
		Info:           info,
		SplitByChapter: s.chapters,
		NewTitle:       s.title,
		Subtitles:      s.subtitles,
		AutoCaptions:   s.autoCaptions,
	}
	formats, err := pickFormats(info, s.formats)
	if err != nil {
		return selection.Result{}, err
	}
	in.Formats = formats
	for _, raw := range s.clips {
		clip, err := parseClip(raw)
		if err != nil {
			return selection.Result{}, err
		}
		in.Clips = append(in.Clips, clip)
	}
	return selection.Merge(in), nil
}

func newPlanCmd(c *cli) *cobra.Command {
	var (
		sel         selectionFlags
		infoFile    string
		playlistURL string
		item        int
	)

	cmd := &cobra.Command{
		Use:   "plan [url]",
		Short: "Print the yt-dlp arguments a download would use",
		Long: `plan compiles the current preferences and selection flags into the
argument list handed to yt-dlp, without downloading anything. Metadata is
probed from the URL, or read from a saved yt-dlp -J document with --info-json.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				info videoinfo.VideoInfo
				err  error
			)
			switch {
			case infoFile != "":
				info, err = loadInfoFile(infoFile)
			case len(args) == 1:
				info, err = c.app.Client.FetchVideoInfo(cmd.Context(), args[0])
			default:
				return fmt.Errorf("need a url or --info-json")
			}
			if err != nil {
				return err
			}

			prefs := c.app.Preferences.Clone()
			if item > 0 {
				prefs.DownloadPlaylist = true
			}
			res, err := sel.merge(prefs, info)
			if err != nil {
				return err
			}

			plan := compiler.BuildDownloadPlan(res.Info, res.Preferences, playlistURL, item)
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, shellJoin(plan.Args()))

			var needs []string
			if plan.NeedsCookiesFile() {
				needs = append(needs, "cookies")
			}
			if plan.NeedsArchiveFile() {
				needs = append(needs, "download archive")
			}
			if len(needs) > 0 {
				fmt.Fprintf(w, "# needs: %s\n", strings.Join(needs, ", "))
			}
			fmt.Fprintf(w, "# destination: %s\n", plan.DownloadPathHint())
			return nil
		},
	}

	sel.bind(cmd)
	cmd.Flags().StringVar(&infoFile, "info-json", "", "Read metadata from a yt-dlp -J file instead of probing")
	cmd.Flags().StringVar(&playlistURL, "playlist-url", "", "Playlist the video belongs to")
	cmd.Flags().IntVar(&item, "item", 0, "1-based playlist index to download")
	return cmd
}
