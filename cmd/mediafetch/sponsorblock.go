package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"thirdcoast.systems/mediafetch/internal/sponsorblock"
	"thirdcoast.systems/mediafetch/internal/videoid"
	"thirdcoast.systems/mediafetch/pkg/utils/format"
)

func newSponsorBlockCmd(c *cli) *cobra.Command {
	var categories string

	cmd := &cobra.Command{
		Use:   "sponsorblock <youtube-url>",
		Short: "Preview the segments SponsorBlock removal would cut",
		Long: `sponsorblock lists the skip segments yt-dlp's --sponsorblock-remove
would cut from a YouTube video, using the configured categories unless
--categories is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := videoid.ExtractYouTubeVideoID(args[0])
			if err != nil {
				return fmt.Errorf("not a YouTube video url: %w", err)
			}

			raw := categories
			if raw == "" {
				raw = c.app.Preferences.SponsorBlockCategories
			}
			cats := sponsorblock.Categories(raw)
			if len(cats) == 0 {
				return fmt.Errorf("no removable categories in %q", raw)
			}

			segs, err := c.app.SponsorBlock.GetSkipSegments(cmd.Context(), id, cats)
			if err != nil {
				return err
			}
			cuts := sponsorblock.Cuts(segs)

			w := cmd.OutOrStdout()
			if len(cuts) == 0 {
				fmt.Fprintln(w, "nothing to cut")
				return nil
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "START\tEND\tLENGTH\tCATEGORY")
			for _, cut := range cuts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					format.Duration(cut.Start), format.Duration(cut.End), format.Duration(cut.Duration()), cut.Title)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(w, "\n%s removed\n", format.Duration(sponsorblock.Removed(cuts)))
			return nil
		},
	}
	cmd.Flags().StringVar(&categories, "categories", "", "Override the categories, e.g. default,-intro")
	return cmd
}
