package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(c *cli) *cobra.Command {
	var update bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the yt-dlp version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if update {
				if err := c.app.Client.Update(cmd.Context()); err != nil {
					return err
				}
			}
			v, err := c.app.Client.Version(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "yt-dlp %s\n", v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&update, "update", false, "Run yt-dlp -U first")
	return cmd
}
