// Package application wires configuration into the long-lived services a
// command needs.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"thirdcoast.systems/mediafetch/internal/config"
	"thirdcoast.systems/mediafetch/internal/history"
	"thirdcoast.systems/mediafetch/internal/preferences"
	"thirdcoast.systems/mediafetch/internal/queue"
	"thirdcoast.systems/mediafetch/internal/sponsorblock"
	"thirdcoast.systems/mediafetch/pkg/cookievault"
	"thirdcoast.systems/mediafetch/pkg/ytdlp"
)

// App holds the services built from one Config.
type App struct {
	Config       config.Config
	Preferences  preferences.Preferences
	Client       *ytdlp.Client
	Executor     ytdlp.Executor
	Vault        *cookievault.Vault
	History      *history.Store
	SponsorBlock *sponsorblock.Client
}

// LoadPreferences reads the preferences file, or returns the defaults when
// none is configured.
func LoadPreferences(conf config.Config) (preferences.Preferences, error) {
	if conf.PreferencesFile == "" {
		return preferences.Default(), nil
	}
	return preferences.Load(conf.PreferencesFile)
}

// NewClient builds the metadata client. Probes run without cookies.
func NewClient(conf config.Config) *ytdlp.Client {
	c := ytdlp.New()
	c.Path = conf.YtDlpPath
	return c
}

// New builds everything except the history store, which OpenHistory adds on
// demand.
func New(conf config.Config) (*App, error) {
	prefs, err := LoadPreferences(conf)
	if err != nil {
		return nil, err
	}
	vault, err := InitCookieVault(conf)
	if err != nil {
		return nil, err
	}
	return &App{
		Config:       conf,
		Preferences:  prefs,
		Client:       NewClient(conf),
		Executor:     ytdlp.NewCommandExecutor(conf.YtDlpPath, conf.FFmpegPath),
		Vault:        vault,
		SponsorBlock: sponsorblock.NewClient(conf.SponsorBlockURL),
	}, nil
}

// OpenHistory connects and migrates the history store.
func (a *App) OpenHistory(ctx context.Context) (*history.Store, error) {
	if a.History != nil {
		return a.History, nil
	}
	store, err := OpenHistoryWithRetry(ctx, a.Config)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	a.History = store
	return store, nil
}

// Dirs returns the queue directories, creating the ones that must exist.
func (a *App) Dirs() (queue.Dirs, error) {
	d := queue.Dirs{
		Download: a.Config.DownloadDir,
		Private:  a.Config.PrivateDownloadDir,
		Work:     a.Config.WorkDir,
	}
	for _, dir := range []string{d.Download, d.Work} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return queue.Dirs{}, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return d, nil
}

// NewQueue builds a download queue. Finished downloads are recorded only when
// OpenHistory was called first.
func (a *App) NewQueue() (*queue.Queue, error) {
	dirs, err := a.Dirs()
	if err != nil {
		return nil, err
	}
	prefs := a.Preferences
	opts := queue.Options{
		Executor:      a.Executor,
		Fetcher:       a.Client,
		Preferences:   func() preferences.Preferences { return prefs },
		Dirs:          dirs,
		ArchiveFile:   a.Config.ArchiveFile,
		CookiesFile:   a.Config.CookiesFile,
		Cookies:       a.Vault,
		MaxConcurrent: int64(a.Config.MaxConcurrentDownloads),
	}
	if a.History != nil {
		opts.History = a.History
	}
	slog.Info("Download queue ready", "download_dir", dirs.Download, "max_concurrent", opts.MaxConcurrent)
	return queue.New(opts), nil
}

// Close releases the history store.
func (a *App) Close() error {
	if a.History == nil {
		return nil
	}
	return a.History.Close()
}
