package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"thirdcoast.systems/mediafetch/internal/selection"
	"thirdcoast.systems/mediafetch/pkg/utils/format"
	"thirdcoast.systems/mediafetch/pkg/videoinfo"
)

func newInfoCmd(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info <url>",
		Short: "Show metadata and the format catalog of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := c.app.Client.FetchVideoInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				_, err := cmd.OutOrStdout().Write(info.RawJSON())
				return err
			}
			return printInfo(cmd.OutOrStdout(), info)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw yt-dlp JSON")
	return cmd
}

func printInfo(w io.Writer, info videoinfo.VideoInfo) error {
	uploader := info.Uploader
	if uploader == "" {
		uploader = info.Channel
	}
	fmt.Fprintf(w, "Title:     %s\n", info.Title)
	fmt.Fprintf(w, "Uploader:  %s\n", uploader)
	fmt.Fprintf(w, "Duration:  %s\n", format.Duration(info.Duration))
	fmt.Fprintf(w, "Extractor: %s\n", info.ExtractorKey)
	fmt.Fprintf(w, "URL:       %s\n", info.URL())
	if len(info.Formats) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEXT\tRESOLUTION\tVCODEC\tACODEC\tSIZE\tNOTE")
	for _, f := range info.Formats {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.FormatID, f.Ext, f.Resolution, f.VCodec, f.ACodec, format.Bytes(f.Size()), f.FormatNote)
	}
	return tw.Flush()
}

func newPlaylistCmd(c *cli) *cobra.Command {
	var items string

	cmd := &cobra.Command{
		Use:   "playlist <url>",
		Short: "List the entries of a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.app.Client.FetchPlaylist(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var indices []int
			if items != "" {
				if indices, err = parseIndices(items); err != nil {
					return err
				}
			} else {
				for i := range result.Entries {
					indices = append(indices, i+1)
				}
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s (%d entries)\n\n", result.Title, len(result.Entries))
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tTITLE\tUPLOADER\tDURATION\tURL")
			for _, it := range selection.MapPlaylist(result, indices) {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
					it.Index, format.Truncate(it.Item.Title, 60), it.Item.Uploader, it.Item.Duration, it.Item.URL)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&items, "items", "", "Playlist indices to show, e.g. 1,3-5")
	return cmd
}

// loadInfoFile reads a saved yt-dlp -J document.
func loadInfoFile(path string) (videoinfo.VideoInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return videoinfo.VideoInfo{}, err
	}
	info, err := videoinfo.NewVideoInfo(data)
	if err != nil {
		return videoinfo.VideoInfo{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return info, nil
}
