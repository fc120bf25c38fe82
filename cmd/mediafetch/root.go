package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"thirdcoast.systems/mediafetch/internal/application"
	"thirdcoast.systems/mediafetch/internal/config"
)

// cli carries state shared by every subcommand.
type cli struct {
	debug bool
	app   *application.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "mediafetch",
		Short: "Download video and audio with yt-dlp",
		Long: `mediafetch compiles download preferences into yt-dlp invocations,
runs them through a bounded queue and records what was fetched.

Configuration comes from the environment (YTDLP_PATH, DOWNLOAD_DIR,
DATABASE_DRIVER, DATABASE_DSN, ...). Download preferences are read from
PREFERENCES_FILE when set.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}

	rootCmd.PersistentFlags().BoolVar(&c.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newInfoCmd(c))
	rootCmd.AddCommand(newPlaylistCmd(c))
	rootCmd.AddCommand(newPlanCmd(c))
	rootCmd.AddCommand(newDownloadCmd(c))
	rootCmd.AddCommand(newCustomCmd(c))
	rootCmd.AddCommand(newHistoryCmd(c))
	rootCmd.AddCommand(newMigrateCmd(c))
	rootCmd.AddCommand(newCookiesCmd(c))
	rootCmd.AddCommand(newSponsorBlockCmd(c))
	rootCmd.AddCommand(newVersionCmd(c))

	return rootCmd
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if c.debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	conf, err := config.LoadConfig(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app, err := application.New(*conf)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	c.app = app
	return nil
}
