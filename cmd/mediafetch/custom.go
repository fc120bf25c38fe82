package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"thirdcoast.systems/mediafetch/internal/compiler"
	"thirdcoast.systems/mediafetch/pkg/ytdlp"
)

func newCustomCmd(c *cli) *cobra.Command {
	var templateFile string

	cmd := &cobra.Command{
		Use:   "custom <url>...",
		Short: "Run yt-dlp with a user command template",
		Long: `custom runs yt-dlp with the user's own option template, loaded as a
yt-dlp config file. Output goes to COMMAND_DIR, or DOWNLOAD_DIR when unset.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prefs := c.app.Preferences.Clone()
			if templateFile != "" {
				data, err := os.ReadFile(templateFile)
				if err != nil {
					return fmt.Errorf("read template: %w", err)
				}
				prefs.CommandTemplate = string(data)
			}

			dir := c.app.Config.CommandDir
			if dir == "" {
				dir = c.app.Config.DownloadDir
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}

			plan := compiler.BuildCustomCommandPlan(args, prefs, dir)
			cfg := ytdlp.ExecConfig{WorkDir: dir, ArchiveFile: c.app.Config.ArchiveFile}
			if plan.NeedsCookiesFile() && c.app.Config.CookiesFile != "" {
				path, cleanup, err := c.app.Vault.Materialize(c.app.Config.CookiesFile)
				if err != nil {
					return fmt.Errorf("prepare cookies: %w", err)
				}
				defer cleanup()
				cfg.CookiesFile = path
			}

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			run, err := c.app.Executor.Start(ctx, plan, cfg,
				func(line string) { fmt.Fprintln(out, line) },
				func(line string) { fmt.Fprintln(errOut, line) })
			if err != nil {
				return err
			}

			_, err = run.Wait()
			var execErr *ytdlp.ExecError
			switch {
			case errors.Is(err, ytdlp.ErrCanceled):
				slog.Info("Custom command canceled")
				return ctx.Err()
			case errors.As(err, &execErr):
				return fmt.Errorf("yt-dlp: %s", execErr.Message())
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&templateFile, "template", "t", "", "yt-dlp config file with the command options")
	return cmd
}
