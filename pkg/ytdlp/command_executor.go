package ytdlp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// cancelGrace bounds how long a canceled run waits for its output pipes to
// close before they are forced shut.
const cancelGrace = 5 * time.Second

// CommandExecutor runs yt-dlp as a child process.
type CommandExecutor struct {
	// Path to yt-dlp executable. Defaults to "yt-dlp" (PATH lookup).
	Path string
	// FFmpegPath is passed as --ffmpeg-location when set (bundled ffmpeg).
	FFmpegPath string
}

// NewCommandExecutor returns an executor for the binary at path.
func NewCommandExecutor(path, ffmpegPath string) *CommandExecutor {
	return &CommandExecutor{Path: path, FFmpegPath: ffmpegPath}
}

// PathOrDefault returns the configured path or "yt-dlp" if unset.
func (e *CommandExecutor) PathOrDefault() string {
	if strings.TrimSpace(e.Path) == "" {
		return "yt-dlp"
	}
	return e.Path
}

// Start launches the process and returns immediately. Stdout and stderr are
// each drained on their own goroutine, so a chatty stream cannot block the
// other one or the caller.
func (e *CommandExecutor) Start(ctx context.Context, plan *Plan, cfg ExecConfig, onStdout, onStderr LineFunc) (*Run, error) {
	name, err := exec.LookPath(e.PathOrDefault())
	if err != nil {
		return nil, fmt.Errorf("ytdlp: resolve binary: %w", err)
	}

	configFile, cleanup, err := materializeConfig(plan)
	if err != nil {
		return nil, fmt.Errorf("ytdlp: write config template: %w", err)
	}

	args := invocationArgs(plan, cfg, e.FFmpegPath, configFile)

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = cfg.WorkDir
	cmd.WaitDelay = cancelGrace
	setProcessGroup(cmd)
	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		cleanup()
		return nil, fmt.Errorf("ytdlp: stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		cleanup()
		return nil, fmt.Errorf("ytdlp: stderr pipe: %w", err)
	}

	slog.Info("ytdlp: Executing command", "cmd", name, "args", args, "dir", cfg.WorkDir)
	if err := cmd.Start(); err != nil {
		cancel()
		cleanup()
		return nil, fmt.Errorf("ytdlp: start: %w", err)
	}

	run := newRun(cancel)
	run.pid = cmd.Process.Pid

	var outBuf, errBuf bytes.Buffer
	outW := &streamWriter{callback: onStdout, buffer: &outBuf}
	errW := &streamWriter{callback: onStderr, buffer: &errBuf}

	go func() {
		defer cleanup()

		drained := make(chan struct{})
		go closeAfterCancel(runCtx, drained, stdoutPipe, stderrPipe)

		var g errgroup.Group
		g.Go(func() error { return drain(outW, stdoutPipe) })
		g.Go(func() error { return drain(errW, stderrPipe) })
		readErr := g.Wait()
		close(drained)

		waitErr := cmd.Wait()
		if waitErr == nil && readErr != nil {
			waitErr = readErr
		}
		if ctx.Err() != nil {
			run.canceled.Store(true)
		}

		res := Result{Stdout: outW.Lines(), Stderr: errW.Lines()}
		if cmd.ProcessState != nil {
			res.ExitCode = cmd.ProcessState.ExitCode()
		}
		run.finish(res, waitErr, name, args, outBuf.Bytes(), errBuf.Bytes())

		slog.Info("ytdlp: Command finished", "cmd", name, "pid", run.pid, "state", run.State().String(), "exit_code", run.result.ExitCode)
	}()

	return run, nil
}

// closeAfterCancel force-closes the pipes when a canceled run has not
// drained them within cancelGrace. A grandchild that escaped the process
// group kill would otherwise keep them open until it finishes on its own.
func closeAfterCancel(ctx context.Context, drained <-chan struct{}, pipes ...io.Closer) {
	select {
	case <-drained:
		return
	case <-ctx.Done():
	}
	t := time.NewTimer(cancelGrace)
	defer t.Stop()
	select {
	case <-drained:
	case <-t.C:
		slog.Warn("ytdlp: Output still open after cancel, closing pipes")
		for _, p := range pipes {
			_ = p.Close()
		}
	}
}

// drain copies r into w until EOF and flushes a trailing partial line.
func drain(w *streamWriter, r io.Reader) error {
	_, err := io.Copy(w, r)
	w.Flush()
	return err
}
