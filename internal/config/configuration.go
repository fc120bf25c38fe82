package config

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	// Tools
	YtDlpPath  string `mapstructure:"YTDLP_PATH" validate:"required"`
	FFmpegPath string `mapstructure:"FFMPEG_PATH"`

	// Directories
	DownloadDir        string `mapstructure:"DOWNLOAD_DIR" validate:"required"`
	PrivateDownloadDir string `mapstructure:"PRIVATE_DOWNLOAD_DIR"`
	WorkDir            string `mapstructure:"WORK_DIR"`
	CommandDir         string `mapstructure:"COMMAND_DIR"`

	// Files
	PreferencesFile string `mapstructure:"PREFERENCES_FILE"`
	ArchiveFile     string `mapstructure:"ARCHIVE_FILE"`
	CookiesFile     string `mapstructure:"COOKIES_FILE"`
	CookiesKey      string `mapstructure:"COOKIES_KEY" validate:"omitempty,hexadecimal,len=64"`
	CookiesCipher   string `mapstructure:"COOKIES_CIPHER" validate:"oneof=chacha20-poly1305 xchacha20-poly1305 aes-256-gcm"`

	// History database
	DatabaseDriver  string `mapstructure:"DATABASE_DRIVER" validate:"oneof=sqlite pgx"`
	DatabaseDSN     string `mapstructure:"DATABASE_DSN" validate:"required"`
	DatabaseRetries int    `mapstructure:"DATABASE_RETRIES" validate:"gte=0"`

	MaxConcurrentDownloads int `mapstructure:"MAX_CONCURRENT_DOWNLOADS" validate:"gte=1"`

	// SponsorBlock API base for cut previews; empty uses the public instance.
	SponsorBlockURL string `mapstructure:"SPONSORBLOCK_URL" validate:"omitempty,url"`
}

// LogValue keeps the cookie key out of logs.
func (c Config) LogValue() slog.Value {
	redacted := c
	if redacted.CookiesKey != "" {
		redacted.CookiesKey = "[redacted]"
	}
	type plain Config
	return slog.AnyValue(plain(redacted))
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	typ := reflect.TypeOf(c)
	for i := 0; i < typ.NumField(); i++ {
		if tag := typ.Field(i).Tag.Get("mapstructure"); tag != "" {
			viper.BindEnv(tag)
		}
	}
	slog.Info("Environment variables bound", "config", c)
}

func LoadConfig(ctx context.Context) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("YTDLP_PATH", "yt-dlp")
	viper.SetDefault("DOWNLOAD_DIR", "downloads")
	viper.SetDefault("COOKIES_CIPHER", "xchacha20-poly1305")
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_DSN", "mediafetch.db")
	viper.SetDefault("DATABASE_RETRIES", 10)
	viper.SetDefault("MAX_CONCURRENT_DOWNLOADS", 2)

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	slog.Info("Loaded configuration", "config", cfg)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
