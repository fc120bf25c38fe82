package ytdlp

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCanceled is returned by Run.Wait when cancellation was requested before
// the process finished. A canceled process usually exits nonzero; that exit
// is not a failure.
var ErrCanceled = errors.New("ytdlp: canceled")

type ExecError struct {
	Cmd      string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Cause    error
}

func (e *ExecError) Error() string {
	cmdline := strings.TrimSpace(e.Cmd + " " + strings.Join(e.Args, " "))
	if e.ExitCode != 0 {
		return fmt.Sprintf("ytdlp: command failed (exit %d): %s", e.ExitCode, cmdline)
	}
	return fmt.Sprintf("ytdlp: command failed: %s", cmdline)
}

func (e *ExecError) Unwrap() error { return e.Cause }

// Message returns a short human readable reason: the last "ERROR:" line
// yt-dlp printed, else the last stderr line, else the cause.
func (e *ExecError) Message() string {
	lines := strings.Split(strings.TrimSpace(e.Stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "ERROR:") {
			return strings.TrimSpace(lines[i])
		}
	}
	if last := strings.TrimSpace(lines[len(lines)-1]); last != "" {
		return last
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Error()
}

func wrapExecError(cmd string, args []string, stdout []byte, stderr []byte, cause error) error {
	exitCode := 0
	var ee *exec.ExitError
	if errors.As(cause, &ee) {
		exitCode = ee.ExitCode()
	}
	var se *exitStatusError
	if errors.As(cause, &se) {
		exitCode = se.code
	}

	return &ExecError{
		Cmd:      cmd,
		Args:     args,
		ExitCode: exitCode,
		Stdout:   strings.TrimSpace(string(stdout)),
		Stderr:   strings.TrimSpace(string(stderr)),
		Cause:    cause,
	}
}

// exitStatusError reports a nonzero exit from an in-process entry point.
type exitStatusError struct{ code int }

func (e *exitStatusError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// sponsorBlockUnavailable is the text yt-dlp prints when the SponsorBlock API
// cannot be reached. The media itself has usually been downloaded by then.
const sponsorBlockUnavailable = "Unable to communicate with SponsorBlock API"

// IsSponsorBlockUnavailable reports whether err is a yt-dlp failure caused
// only by the SponsorBlock API being unreachable. This matches yt-dlp's
// message text and breaks if yt-dlp rewords it.
func IsSponsorBlockUnavailable(err error) bool {
	var ee *ExecError
	if !errors.As(err, &ee) {
		return false
	}
	return strings.Contains(ee.Stderr, sponsorBlockUnavailable)
}
