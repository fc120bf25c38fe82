package ytdlp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
)

// EntryPoint is an in-process yt-dlp, e.g. a bundled native library. It must
// return when ctx is canceled and reports the exit code yt-dlp would have
// returned.
type EntryPoint func(ctx context.Context, args []string, stdout, stderr io.Writer) (int, error)

// LibraryExecutor runs plans through an EntryPoint instead of spawning a
// process. The working directory and environment are the host's concern; the
// config fields are still passed through as arguments.
type LibraryExecutor struct {
	Name       string
	FFmpegPath string
	Entry      EntryPoint
}

// NewLibraryExecutor wraps entry.
func NewLibraryExecutor(name string, entry EntryPoint) *LibraryExecutor {
	return &LibraryExecutor{Name: name, Entry: entry}
}

func (e *LibraryExecutor) Start(ctx context.Context, plan *Plan, cfg ExecConfig, onStdout, onStderr LineFunc) (*Run, error) {
	if e.Entry == nil {
		return nil, fmt.Errorf("ytdlp: library executor has no entry point")
	}

	configFile, cleanup, err := materializeConfig(plan)
	if err != nil {
		return nil, fmt.Errorf("ytdlp: write config template: %w", err)
	}

	args := invocationArgs(plan, cfg, e.FFmpegPath, configFile)
	name := e.Name
	if name == "" {
		name = "yt-dlp"
	}

	runCtx, cancel := context.WithCancel(ctx)
	run := newRun(cancel)

	var outBuf, errBuf bytes.Buffer
	outW := &streamWriter{callback: onStdout, buffer: &outBuf}
	errW := &streamWriter{callback: onStderr, buffer: &errBuf}

	slog.Info("ytdlp: Executing library call", "name", name, "args", args)
	go func() {
		defer cleanup()

		code, callErr := e.Entry(runCtx, args, outW, errW)
		outW.Flush()
		errW.Flush()

		if ctx.Err() != nil {
			run.canceled.Store(true)
		}
		if callErr == nil && code != 0 {
			callErr = &exitStatusError{code: code}
		}

		res := Result{ExitCode: code, Stdout: outW.Lines(), Stderr: errW.Lines()}
		run.finish(res, callErr, name, args, outBuf.Bytes(), errBuf.Bytes())
	}()

	return run, nil
}
