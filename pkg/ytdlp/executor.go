package ytdlp

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
)

// Executor turns a Plan into a running yt-dlp invocation. Implementations
// exist for a spawned OS process (CommandExecutor) and for an in-process
// entry point (LibraryExecutor).
type Executor interface {
	Start(ctx context.Context, plan *Plan, cfg ExecConfig, onStdout, onStderr LineFunc) (*Run, error)
}

// ExecConfig carries the platform-specific parts of an invocation. Cookie and
// archive paths are only used when the plan declared the matching need.
type ExecConfig struct {
	WorkDir     string
	CookiesFile string
	ArchiveFile string
	// Env holds extra KEY=VALUE pairs appended to the inherited environment.
	Env []string
	// URL is appended last for download plans.
	URL string
}

// Result is the terminal outcome of a run.
type Result struct {
	ExitCode int
	Stdout   []string
	Stderr   []string
}

// RunState is the lifecycle of a single execution.
type RunState int32

const (
	StateNotStarted RunState = iota
	StateRunning
	StateCompleted
	StateFailed
	StateCanceled
)

func (s RunState) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCanceled:
		return "canceled"
	}
	return "unknown"
}

// Run is a handle on one execution.
type Run struct {
	pid      int
	cancel   context.CancelFunc
	canceled atomic.Bool
	state    atomic.Int32
	done     chan struct{}
	once     sync.Once

	result Result
	err    error
}

func newRun(cancel context.CancelFunc) *Run {
	r := &Run{cancel: cancel, done: make(chan struct{})}
	r.state.Store(int32(StateRunning))
	return r
}

// PID returns the OS process id, or 0 for in-process runs.
func (r *Run) PID() int { return r.pid }

// State returns the current lifecycle state.
func (r *Run) State() RunState { return RunState(r.state.Load()) }

// Done is closed once the run reached a terminal state.
func (r *Run) Done() <-chan struct{} { return r.done }

// Cancel requests termination. It is best-effort and returns immediately;
// use Wait or Done to observe the process exit. Cancel after completion is a
// no-op.
func (r *Run) Cancel() {
	select {
	case <-r.done:
		return
	default:
	}
	r.canceled.Store(true)
	r.cancel()
}

// Canceled reports whether cancellation was requested while running.
func (r *Run) Canceled() bool { return r.canceled.Load() }

// Wait blocks until the run finishes. It returns ErrCanceled when the run was
// canceled, an *ExecError when the process exited nonzero, and nil otherwise.
// The Result is populated in every case.
func (r *Run) Wait() (Result, error) {
	<-r.done
	return r.result, r.err
}

// finish records the outcome. Cancellation wins over both failure and a
// late success.
func (r *Run) finish(res Result, cause error, cmd string, args []string, stdout, stderr []byte) {
	r.once.Do(func() {
		r.result = res
		switch {
		case r.canceled.Load():
			r.err = ErrCanceled
			r.state.Store(int32(StateCanceled))
		case cause != nil:
			r.err = wrapExecError(cmd, args, stdout, stderr, cause)
			if ee, ok := r.err.(*ExecError); ok {
				r.result.ExitCode = ee.ExitCode
			}
			r.state.Store(int32(StateFailed))
		default:
			r.state.Store(int32(StateCompleted))
		}
		r.cancel()
		close(r.done)
	})
}

// invocationArgs assembles everything after the binary name:
// [--ffmpeg-location p] plan args [--config-locations f] [--cookies f]
// [--download-archive f] targets|url.
func invocationArgs(plan *Plan, cfg ExecConfig, ffmpegPath, configFile string) []string {
	args := make([]string, 0, 32)
	if ffmpegPath != "" {
		args = append(args, "--ffmpeg-location", ffmpegPath)
	}
	args = append(args, plan.Args()...)
	if configFile != "" {
		args = append(args, "--config-locations", configFile)
	}
	if plan.NeedsCookiesFile() && cfg.CookiesFile != "" {
		args = append(args, "--cookies", cfg.CookiesFile)
	}
	if plan.NeedsArchiveFile() && cfg.ArchiveFile != "" {
		args = append(args, "--download-archive", cfg.ArchiveFile)
	}
	if targets := plan.Targets(); len(targets) > 0 {
		args = append(args, targets...)
	} else if cfg.URL != "" {
		args = append(args, cfg.URL)
	}
	return args
}

// materializeConfig writes a custom plan's config template to a temp file.
// The returned cleanup is safe to call when no file was written.
func materializeConfig(plan *Plan) (string, func(), error) {
	text := plan.ConfigTemplate()
	if text == "" {
		return "", func() {}, nil
	}
	path, err := createTempFile("ytdlp-config-*.conf", text)
	if err != nil {
		return "", func() {}, err
	}
	return path, func() { _ = os.Remove(path) }, nil
}

// createTempFile creates a temporary file with the given content.
func createTempFile(pattern, content string) (string, error) {
	tmpFile, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	defer tmpFile.Close()

	if _, err := tmpFile.WriteString(content); err != nil {
		os.Remove(tmpFile.Name())
		return "", err
	}

	return tmpFile.Name(), nil
}
