package queue

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"thirdcoast.systems/mediafetch/pkg/videoinfo"
)

func TestReconcile_HappyPath(t *testing.T) {
	info := videoinfo.VideoInfo{ID: "abc"}

	var s DownloadState = Idle{}
	steps := []struct {
		ev   Event
		want DownloadState
	}{
		{FetchStarted{}, FetchingInfo{}},
		{InfoFetched{Info: info}, ReadyWithInfo{Info: info}},
		{RunStarted{}, Running{}},
		{ProgressUpdated{Progress: 0.25, Text: "25%"}, Running{Progress: 0.25, ProgressText: "25%"}},
		{Finished{FilePath: "/x.mkv"}, Completed{FilePath: "/x.mkv"}},
	}

	for _, step := range steps {
		next, ok := Reconcile(s, step.ev)
		require.True(t, ok, "%T from %s", step.ev, s)
		require.Equal(t, step.want, next)
		s = next
	}
}

func TestReconcile_NoSkippedSteps(t *testing.T) {
	info := videoinfo.VideoInfo{ID: "abc"}

	tests := []struct {
		name string
		s    DownloadState
		ev   Event
	}{
		{"idle cannot become ready", Idle{}, InfoFetched{Info: info}},
		{"idle cannot run", Idle{}, RunStarted{}},
		{"fetching cannot run", FetchingInfo{}, RunStarted{}},
		{"ready cannot finish", ReadyWithInfo{Info: info}, Finished{}},
		{"ready cannot refetch", ReadyWithInfo{Info: info}, FetchStarted{}},
		{"running cannot restart", Running{}, RunStarted{}},
		{"completed is sticky", Completed{}, Failed{Err: errors.New("x")}},
		{"error is sticky", Error{}, Finished{}},
		{"canceled ignores late success", Canceled{Progress: 0.5}, Finished{FilePath: "/x"}},
		{"canceled ignores late failure", Canceled{}, Failed{Err: errors.New("x")}},
		{"canceled ignores progress", Canceled{}, ProgressUpdated{Progress: 1}},
		{"cancel twice", Canceled{}, CancelRequested{}},
		{"cancel completed", Completed{}, CancelRequested{}},
		{"retry while running", Running{}, RetryRequested{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := Reconcile(tt.s, tt.ev)
			require.False(t, ok)
			require.Equal(t, tt.s, next)
		})
	}
}

func TestReconcile_Cancel(t *testing.T) {
	next, ok := Reconcile(Running{Progress: 0.4, ProgressText: "40%"}, CancelRequested{})
	require.True(t, ok)
	require.Equal(t, Canceled{Progress: 0.4}, next)

	for _, s := range []DownloadState{Idle{}, FetchingInfo{}, ReadyWithInfo{}} {
		next, ok := Reconcile(s, CancelRequested{})
		require.True(t, ok)
		require.Equal(t, Canceled{}, next)
	}
}

func TestReconcile_Failures(t *testing.T) {
	boom := errors.New("boom")

	next, ok := Reconcile(FetchingInfo{}, FetchFailed{Err: boom})
	require.True(t, ok)
	require.Equal(t, Error{Err: boom}, next)

	next, ok = Reconcile(Running{}, Failed{Err: boom})
	require.True(t, ok)
	require.Equal(t, Error{Err: boom}, next)

	next, ok = Reconcile(ReadyWithInfo{}, Failed{Err: ErrAlreadyDownloaded})
	require.True(t, ok)
	require.ErrorIs(t, next.(Error).Err, ErrAlreadyDownloaded)
}

func TestReconcile_Retry(t *testing.T) {
	info := videoinfo.VideoInfo{ID: "abc"}

	for _, s := range []DownloadState{Completed{}, Canceled{}, Error{}} {
		next, ok := Reconcile(s, RetryRequested{Info: &info})
		require.True(t, ok)
		require.Equal(t, ReadyWithInfo{Info: info}, next)

		next, ok = Reconcile(s, RetryRequested{})
		require.True(t, ok)
		require.Equal(t, Idle{}, next)
	}
}

func TestReconcile_ProgressOutOfRangeKeepsPrevious(t *testing.T) {
	next, ok := Reconcile(Running{Progress: 0.3}, ProgressUpdated{Progress: 7, Text: "?"})
	require.True(t, ok)
	require.Equal(t, 0.3, next.(Running).Progress)
}

func TestReconcile_NilStateIsIdle(t *testing.T) {
	next, ok := Reconcile(nil, FetchStarted{})
	require.True(t, ok)
	require.Equal(t, FetchingInfo{}, next)
}

func TestIsTerminal(t *testing.T) {
	require.True(t, IsTerminal(Completed{}))
	require.True(t, IsTerminal(Canceled{}))
	require.True(t, IsTerminal(Error{}))
	require.False(t, IsTerminal(Running{}))
	require.False(t, IsTerminal(Idle{}))
}

func TestStateStrings(t *testing.T) {
	require.Equal(t, "running (50.0%)", Running{Progress: 0.5}.String())
	require.Equal(t, "error: boom", Error{Err: errors.New("boom")}.String())
	require.Equal(t, "error", Error{}.String())
}
