package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"thirdcoast.systems/mediafetch/pkg/utils/format"
)

func newHistoryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the download history",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent downloads, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.app.OpenHistory(cmd.Context())
			if err != nil {
				return err
			}
			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tWHEN\tTITLE\tSIZE\tPATH")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.DownloadedAt.Local().Format(time.DateTime), format.Truncate(r.Title, 50),
					format.Bytes(r.FileSize), r.FilePath)
			}
			return tw.Flush()
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Forget a download",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id: %w", err)
			}
			store, err := c.app.OpenHistory(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := store.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no history record %s", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, rm)
	return cmd
}

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply history database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.app.OpenHistory(cmd.Context())
			if err != nil {
				return err
			}
			version, err := store.Version(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "history schema at version %d (%s)\n", version, store.Driver())
			return nil
		},
	}
}
