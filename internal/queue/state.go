package queue

import (
	"fmt"
	"math"

	"thirdcoast.systems/mediafetch/pkg/videoinfo"
)

// DownloadState is the lifecycle of one task. The set of variants is closed.
type DownloadState interface {
	isDownloadState()
	String() string
}

type (
	// Idle is a freshly added task.
	Idle struct{}
	// FetchingInfo is waiting on the metadata probe.
	FetchingInfo struct{}
	// ReadyWithInfo has metadata and can be started.
	ReadyWithInfo struct{ Info videoinfo.VideoInfo }
	// Running has a live process.
	Running struct {
		Progress     float64
		ProgressText string
	}
	// Completed produced FilePath.
	Completed struct{ FilePath string }
	// Canceled keeps the progress reached before the user stopped it.
	Canceled struct{ Progress float64 }
	// Error carries the failure shown to the user.
	Error struct{ Err error }
)

func (Idle) isDownloadState()          {}
func (FetchingInfo) isDownloadState()  {}
func (ReadyWithInfo) isDownloadState() {}
func (Running) isDownloadState()       {}
func (Completed) isDownloadState()     {}
func (Canceled) isDownloadState()      {}
func (Error) isDownloadState()         {}

func (Idle) String() string          { return "idle" }
func (FetchingInfo) String() string  { return "fetching-info" }
func (ReadyWithInfo) String() string { return "ready" }
func (s Running) String() string     { return fmt.Sprintf("running (%.1f%%)", s.Progress*100) }
func (Completed) String() string     { return "completed" }
func (Canceled) String() string      { return "canceled" }
func (s Error) String() string {
	if s.Err == nil {
		return "error"
	}
	return "error: " + s.Err.Error()
}

// IsTerminal reports whether s only changes through an explicit retry.
func IsTerminal(s DownloadState) bool {
	switch s.(type) {
	case Completed, Canceled, Error:
		return true
	}
	return false
}

// Event is an executor or user signal fed to Reconcile.
type Event interface{ isEvent() }

type (
	FetchStarted    struct{}
	InfoFetched     struct{ Info videoinfo.VideoInfo }
	FetchFailed     struct{ Err error }
	RunStarted      struct{}
	ProgressUpdated struct {
		Progress float64
		Text     string
	}
	Finished        struct{ FilePath string }
	Failed          struct{ Err error }
	CancelRequested struct{}
	// RetryRequested starts a new logical run. Info is the metadata to
	// resume from; nil sends the task back to Idle.
	RetryRequested struct{ Info *videoinfo.VideoInfo }
)

func (FetchStarted) isEvent()    {}
func (InfoFetched) isEvent()     {}
func (FetchFailed) isEvent()     {}
func (RunStarted) isEvent()      {}
func (ProgressUpdated) isEvent() {}
func (Finished) isEvent()        {}
func (Failed) isEvent()          {}
func (CancelRequested) isEvent() {}
func (RetryRequested) isEvent()  {}

// Reconcile applies e to s. It returns the next state and whether e was
// accepted; rejected events leave s unchanged. Transitions run strictly
// Idle → FetchingInfo → ReadyWithInfo → Running → terminal, terminal states
// only leave through RetryRequested, and a cancellation is never overwritten
// by a late Finished or Failed.
func Reconcile(s DownloadState, e Event) (DownloadState, bool) {
	if s == nil {
		s = Idle{}
	}

	if _, ok := e.(CancelRequested); ok {
		switch cur := s.(type) {
		case Idle, FetchingInfo, ReadyWithInfo:
			return Canceled{}, true
		case Running:
			return Canceled{Progress: cur.Progress}, true
		}
		return s, false
	}

	if r, ok := e.(RetryRequested); ok {
		if !IsTerminal(s) {
			return s, false
		}
		if r.Info != nil {
			return ReadyWithInfo{Info: *r.Info}, true
		}
		return Idle{}, true
	}

	switch cur := s.(type) {
	case Idle:
		if _, ok := e.(FetchStarted); ok {
			return FetchingInfo{}, true
		}
	case FetchingInfo:
		switch ev := e.(type) {
		case InfoFetched:
			return ReadyWithInfo{Info: ev.Info}, true
		case FetchFailed:
			return Error{Err: ev.Err}, true
		}
	case ReadyWithInfo:
		switch ev := e.(type) {
		case RunStarted:
			return Running{}, true
		case Failed:
			// Pre-flight failures happen before the process launches.
			return Error{Err: ev.Err}, true
		}
	case Running:
		switch ev := e.(type) {
		case ProgressUpdated:
			return Running{Progress: clamp(ev.Progress, cur.Progress), ProgressText: ev.Text}, true
		case Finished:
			return Completed{FilePath: ev.FilePath}, true
		case Failed:
			return Error{Err: ev.Err}, true
		}
	}
	return s, false
}

// clamp keeps progress in [0, 1]. Out-of-range updates keep the previous
// value.
func clamp(p, prev float64) float64 {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return prev
	}
	return p
}
