package ytdlp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"thirdcoast.systems/mediafetch/pkg/videoinfo"
)

// Client runs the short, buffered yt-dlp commands: metadata probes, version
// and self-update. Downloads go through an Executor instead.
type Client struct {
	// Path to yt-dlp executable. Defaults to "yt-dlp" (PATH lookup).
	Path string

	// CookiesFile is passed as --cookies when set.
	CookiesFile string

	// ExtraArgs are always appended before per-call args.
	ExtraArgs []string

	execFn func(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

func New() *Client {
	return &Client{Path: "yt-dlp"}
}

func (c *Client) exec(ctx context.Context, args ...string) (stdout []byte, stderr []byte, err error) {
	name := c.PathOrDefault()

	fullArgs := make([]string, 0, len(c.ExtraArgs)+len(args)+2)
	fullArgs = append(fullArgs, c.ExtraArgs...)
	if c.CookiesFile != "" {
		fullArgs = append(fullArgs, "--cookies", c.CookiesFile)
	}
	fullArgs = append(fullArgs, args...)

	if c.execFn != nil {
		return c.execFn(ctx, name, fullArgs...)
	}

	slog.Info("ytdlp: Executing command", "cmd", name, "args", fullArgs)
	cmd := exec.CommandContext(ctx, name, fullArgs...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// PathOrDefault returns the configured path or "yt-dlp" if unset.
func (c *Client) PathOrDefault() string {
	if strings.TrimSpace(c.Path) == "" {
		return "yt-dlp"
	}
	return c.Path
}

// Version returns `yt-dlp --version`.
func (c *Client) Version(ctx context.Context) (string, error) {
	stdout, stderr, err := c.exec(ctx, "--version")
	if err != nil {
		return "", wrapExecError(c.PathOrDefault(), []string{"--version"}, stdout, stderr, err)
	}
	return strings.TrimSpace(string(stdout)), nil
}

// Update runs `yt-dlp -U` to update to the latest version.
func (c *Client) Update(ctx context.Context, extraArgs ...string) error {
	args := []string{"-U"}
	args = append(args, extraArgs...)

	stdout, stderr, err := c.exec(ctx, args...)
	if err != nil {
		return wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
	}
	return nil
}

// FetchVideoInfo runs `yt-dlp -J --no-playlist <url>` and parses the result.
func (c *Client) FetchVideoInfo(ctx context.Context, url string, extraArgs ...string) (videoinfo.VideoInfo, error) {
	raw, err := c.dumpJSON(ctx, url, append([]string{"-J", "--no-playlist"}, extraArgs...))
	if err != nil {
		return videoinfo.VideoInfo{}, err
	}
	info, err := videoinfo.NewVideoInfo(raw)
	if err != nil {
		return videoinfo.VideoInfo{}, fmt.Errorf("ytdlp: parse json: %w", err)
	}
	return info, nil
}

// FetchPlaylist runs `yt-dlp --flat-playlist --dump-single-json <url>`.
func (c *Client) FetchPlaylist(ctx context.Context, url string, extraArgs ...string) (videoinfo.PlaylistResult, error) {
	raw, err := c.dumpJSON(ctx, url, append([]string{"--flat-playlist", "--dump-single-json"}, extraArgs...))
	if err != nil {
		return videoinfo.PlaylistResult{}, err
	}
	result, err := videoinfo.NewPlaylistResult(raw)
	if err != nil {
		return videoinfo.PlaylistResult{}, fmt.Errorf("ytdlp: parse json: %w", err)
	}
	return result, nil
}

func (c *Client) dumpJSON(ctx context.Context, url string, args []string) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("ytdlp: url is required")
	}
	args = append(args, url)

	stdout, stderr, err := c.exec(ctx, args...)
	if err != nil {
		return nil, wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
	}
	return bytes.TrimSpace(stdout), nil
}
