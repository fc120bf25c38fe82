package queue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"thirdcoast.systems/mediafetch/internal/history"
	"thirdcoast.systems/mediafetch/internal/preferences"
	"thirdcoast.systems/mediafetch/internal/selection"
	"thirdcoast.systems/mediafetch/pkg/videoinfo"
	"thirdcoast.systems/mediafetch/pkg/ytdlp"
)

const testURL = "https://www.youtube.com/watch?v=abc123"

type fakeFetcher struct {
	info videoinfo.VideoInfo
	err  error
}

func (f fakeFetcher) FetchVideoInfo(ctx context.Context, url string, extraArgs ...string) (videoinfo.VideoInfo, error) {
	return f.info, f.err
}

type fakeHistory struct {
	mu   sync.Mutex
	recs []history.Record
}

func (h *fakeHistory) Insert(ctx context.Context, r history.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recs = append(h.recs, r)
	return nil
}

func (h *fakeHistory) records() []history.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]history.Record(nil), h.recs...)
}

type fakeCookies struct {
	path    string
	cleaned chan struct{}
}

func (c *fakeCookies) Materialize(string) (string, func(), error) {
	return c.path, func() { close(c.cleaned) }, nil
}

// recorder keeps the argument vectors the entry point was called with.
type recorder struct {
	mu   sync.Mutex
	args [][]string
}

func (r *recorder) add(args []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.args = append(r.args, append([]string(nil), args...))
}

func (r *recorder) last() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.args) == 0 {
		return nil
	}
	return r.args[len(r.args)-1]
}

func (r *recorder) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.args)
}

type harness struct {
	q       *Queue
	work    string
	dl      string
	hist    *fakeHistory
	calls   *recorder
	prefsMu sync.Mutex
	prefs   preferences.Preferences
}

func (h *harness) setPrefs(p preferences.Preferences) {
	h.prefsMu.Lock()
	defer h.prefsMu.Unlock()
	h.prefs = p
}

// successEntry writes a file into the work dir and announces it.
func successEntry(work, name string) ytdlp.EntryPoint {
	return func(ctx context.Context, args []string, stdout, stderr io.Writer) (int, error) {
		path := filepath.Join(work, name)
		if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
			return 1, err
		}
		fmt.Fprintf(stdout, "[download] Destination: %s\n", name)
		fmt.Fprint(stdout, "[download]  50.0% of 10.00MiB at 1.00MiB/s ETA 00:05\r")
		fmt.Fprint(stdout, "[download] 100.0% of 10.00MiB at 2.00MiB/s ETA 00:00\n")
		return 0, nil
	}
}

func newHarness(t *testing.T, entry func(h *harness) ytdlp.EntryPoint, mutate func(*Options)) *harness {
	t.Helper()
	root := t.TempDir()
	h := &harness{
		work:  filepath.Join(root, "work"),
		dl:    filepath.Join(root, "dl"),
		hist:  &fakeHistory{},
		calls: &recorder{},
		prefs: preferences.Default(),
	}
	require.NoError(t, os.MkdirAll(h.work, 0o755))

	inner := entry(h)
	exec := ytdlp.NewLibraryExecutor("yt-dlp", func(ctx context.Context, args []string, stdout, stderr io.Writer) (int, error) {
		h.calls.add(args)
		return inner(ctx, args, stdout, stderr)
	})

	opts := Options{
		Executor: exec,
		Fetcher: fakeFetcher{info: videoinfo.VideoInfo{
			ID: "abc123", Title: "A Video", ExtractorKey: "Youtube", VCodec: "vp9",
			WebpageURL: testURL, Duration: 90, FileSize: 10 * 1024 * 1024,
		}},
		Preferences: func() preferences.Preferences {
			h.prefsMu.Lock()
			defer h.prefsMu.Unlock()
			return h.prefs
		},
		Dirs:          Dirs{Download: h.dl, Work: h.work},
		History:       h.hist,
		MaxConcurrent: 4,
	}
	if mutate != nil {
		mutate(&opts)
	}
	h.q = New(opts)
	return h
}

func (h *harness) addReady(t *testing.T, mt MediaType) Task {
	t.Helper()
	task, err := h.q.Add(testURL, mt)
	require.NoError(t, err)
	require.NoError(t, h.q.FetchInfo(context.Background(), task.ID))
	got, _ := h.q.Get(task.ID)
	require.IsType(t, ReadyWithInfo{}, got.State)
	return got
}

func waitFor(t *testing.T, q *Queue, id uuid.UUID, cond func(DownloadState) bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		task, ok := q.Get(id)
		return ok && cond(task.State)
	}, 5*time.Second, 5*time.Millisecond)
}

func TestQueue_DownloadCompletes(t *testing.T) {
	h := newHarness(t, func(h *harness) ytdlp.EntryPoint { return successEntry(h.work, "A Video.mkv") }, nil)

	var mu sync.Mutex
	var seen []DownloadState
	h.q.OnUpdate(func(task Task) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, task.State)
	})

	task := h.addReady(t, MediaVideo)
	require.Equal(t, "A Video", task.View.Title)
	require.Equal(t, "1:30", task.View.Duration)
	require.Equal(t, "10 MiB", task.View.FileSize)
	require.Equal(t, "https://youtube.com/watch?v=abc123", task.SourceURL)

	require.NoError(t, h.q.Start(context.Background(), task.ID))
	done, err := h.q.Wait(context.Background(), task.ID)
	require.NoError(t, err)

	want := filepath.Join(h.dl, "video", "A Video.mkv")
	require.Equal(t, Completed{FilePath: want}, done.State)
	require.Equal(t, 1, done.Attempt)
	require.FileExists(t, want)
	require.NoFileExists(t, filepath.Join(h.work, "A Video.mkv"))

	args := h.calls.last()
	require.Equal(t, testURL, args[len(args)-1])
	require.Contains(t, args, "--add-metadata")

	recs := h.hist.records()
	require.Len(t, recs, 1)
	require.Equal(t, want, recs[0].FilePath)
	require.Equal(t, "video", recs[0].PathHint)

	mu.Lock()
	defer mu.Unlock()
	var progress []Running
	for _, s := range seen {
		if r, ok := s.(Running); ok {
			progress = append(progress, r)
		}
	}
	require.GreaterOrEqual(t, len(progress), 3)
	require.Equal(t, Running{Progress: 0.5, ProgressText: "50.0% of 10.00MiB at 1.00MiB/s, ETA 00:05"}, progress[1])
	require.IsType(t, Completed{}, seen[len(seen)-1])
}

func TestQueue_AudioTask(t *testing.T) {
	h := newHarness(t, func(h *harness) ytdlp.EntryPoint { return successEntry(h.work, "song.mp3") }, nil)
	task := h.addReady(t, MediaAudio)

	require.NoError(t, h.q.Start(context.Background(), task.ID))
	done, err := h.q.Wait(context.Background(), task.ID)
	require.NoError(t, err)

	require.Equal(t, Completed{FilePath: filepath.Join(h.dl, "audio", "song.mp3")}, done.State)
	require.Contains(t, h.calls.last(), "-x")
}

func TestQueue_ArchivePreflight(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "archive.txt")
	require.NoError(t, os.WriteFile(archive, []byte("youtube abc123\n"), 0o644))

	h := newHarness(t, func(h *harness) ytdlp.EntryPoint { return successEntry(h.work, "x.mkv") }, func(o *Options) {
		o.ArchiveFile = archive
	})
	p := preferences.Default()
	p.UseDownloadArchive = true
	h.setPrefs(p)

	task := h.addReady(t, MediaVideo)
	err := h.q.Start(context.Background(), task.ID)
	require.ErrorIs(t, err, ErrAlreadyDownloaded)

	got, _ := h.q.Get(task.ID)
	require.ErrorIs(t, got.State.(Error).Err, ErrAlreadyDownloaded)
	require.Zero(t, h.calls.calls())

	// Wait returns at once for a pre-flight failure.
	_, err = h.q.Wait(context.Background(), task.ID)
	require.NoError(t, err)
}

func TestQueue_ArchivePassesFileWhenNotListed(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "archive.txt")
	require.NoError(t, os.WriteFile(archive, []byte("youtube other\n"), 0o644))

	h := newHarness(t, func(h *harness) ytdlp.EntryPoint { return successEntry(h.work, "x.mkv") }, func(o *Options) {
		o.ArchiveFile = archive
	})
	p := preferences.Default()
	p.UseDownloadArchive = true
	h.setPrefs(p)

	task := h.addReady(t, MediaVideo)
	require.NoError(t, h.q.Start(context.Background(), task.ID))
	_, err := h.q.Wait(context.Background(), task.ID)
	require.NoError(t, err)

	args := h.calls.last()
	i := slices.Index(args, "--download-archive")
	require.GreaterOrEqual(t, i, 0)
	require.Equal(t, archive, args[i+1])
}

func TestQueue_CancelWhileRunning(t *testing.T) {
	started := make(chan struct{})
	h := newHarness(t, func(h *harness) ytdlp.EntryPoint {
		return func(ctx context.Context, args []string, stdout, stderr io.Writer) (int, error) {
			fmt.Fprint(stdout, "[download]  40.0% of 1.00MiB\n")
			close(started)
			<-ctx.Done()
			return 1, nil
		}
	}, nil)

	task := h.addReady(t, MediaVideo)
	require.NoError(t, h.q.Start(context.Background(), task.ID))
	<-started
	waitFor(t, h.q, task.ID, func(s DownloadState) bool {
		r, ok := s.(Running)
		return ok && r.Progress == 0.4
	})

	require.NoError(t, h.q.Cancel(task.ID))
	got, _ := h.q.Get(task.ID)
	require.Equal(t, Canceled{Progress: 0.4}, got.State)

	done, err := h.q.Wait(context.Background(), task.ID)
	require.NoError(t, err)
	require.Equal(t, Canceled{Progress: 0.4}, done.State)
	require.Empty(t, h.hist.records())

	require.ErrorIs(t, h.q.Cancel(task.ID), ErrInvalidTransition)
}

func TestQueue_LateSuccessAfterCancelIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	h := newHarness(t, func(h *harness) ytdlp.EntryPoint {
		inner := successEntry(h.work, "late.mkv")
		return func(ctx context.Context, args []string, stdout, stderr io.Writer) (int, error) {
			close(started)
			<-release
			return inner(ctx, args, stdout, stderr)
		}
	}, nil)

	task := h.addReady(t, MediaVideo)
	require.NoError(t, h.q.Start(context.Background(), task.ID))
	<-started

	require.NoError(t, h.q.Cancel(task.ID))
	close(release)

	done, err := h.q.Wait(context.Background(), task.ID)
	require.NoError(t, err)
	require.IsType(t, Canceled{}, done.State)
	require.Empty(t, h.hist.records())
	require.NoFileExists(t, filepath.Join(h.dl, "video", "late.mkv"))
}

func TestQueue_CancelAfterMoveSkipsHistory(t *testing.T) {
	h := newHarness(t, func(h *harness) ytdlp.EntryPoint { return successEntry(h.work, "moved.mkv") }, nil)
	h.q.afterMove = func(id uuid.UUID) { _ = h.q.Cancel(id) }

	task := h.addReady(t, MediaVideo)
	require.NoError(t, h.q.Start(context.Background(), task.ID))
	done, err := h.q.Wait(context.Background(), task.ID)
	require.NoError(t, err)

	require.IsType(t, Canceled{}, done.State)
	require.Empty(t, h.hist.records())
}

func TestQueue_ListenersSeeCommitOrder(t *testing.T) {
	h := newHarness(t, func(h *harness) ytdlp.EntryPoint {
		return func(ctx context.Context, args []string, stdout, stderr io.Writer) (int, error) {
			fmt.Fprint(stdout, "[download]  40.0% of 10.00MiB at 1.00MiB/s ETA 00:05\n")
			<-ctx.Done()
			return 1, ctx.Err()
		}
	}, nil)
	task := h.addReady(t, MediaVideo)

	entered := make(chan struct{})
	release := make(chan struct{})
	var (
		mu      sync.Mutex
		seen    []DownloadState
		blocked bool
	)
	h.q.OnUpdate(func(task Task) {
		mu.Lock()
		first := !blocked && isRunning(task.State)
		if first {
			blocked = true
		}
		mu.Unlock()

		// Stall delivery of the first Running snapshot.
		if first {
			close(entered)
			<-release
		}
		mu.Lock()
		seen = append(seen, task.State)
		mu.Unlock()
	})

	require.NoError(t, h.q.Start(context.Background(), task.ID))
	<-entered

	canceled := make(chan error, 1)
	go func() { canceled <- h.q.Cancel(task.ID) }()
	time.Sleep(50 * time.Millisecond)
	close(release)
	require.NoError(t, <-canceled)

	done, err := h.q.Wait(context.Background(), task.ID)
	require.NoError(t, err)
	require.IsType(t, Canceled{}, done.State)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	require.IsType(t, Canceled{}, seen[len(seen)-1])
	i := slices.IndexFunc(seen, func(s DownloadState) bool { _, ok := s.(Canceled); return ok })
	require.Equal(t, len(seen)-1, i)
	require.IsType(t, Running{}, seen[i-1])
}

func TestQueue_FailureAndRetryRecompiles(t *testing.T) {
	var mu sync.Mutex
	fail := true
	h := newHarness(t, func(h *harness) ytdlp.EntryPoint {
		ok := successEntry(h.work, "retry.mkv")
		return func(ctx context.Context, args []string, stdout, stderr io.Writer) (int, error) {
			mu.Lock()
			f := fail
			mu.Unlock()
			if f {
				fmt.Fprintln(stderr, "ERROR: [youtube] abc123: Video unavailable")
				return 1, nil
			}
			return ok(ctx, args, stdout, stderr)
		}
	}, nil)

	task := h.addReady(t, MediaVideo)
	require.NoError(t, h.q.Start(context.Background(), task.ID))
	done, err := h.q.Wait(context.Background(), task.ID)
	require.NoError(t, err)

	failed, ok := done.State.(Error)
	require.True(t, ok, "state %s", done.State)
	var execErr *ytdlp.ExecError
	require.ErrorAs(t, failed.Err, &execErr)
	require.Equal(t, "ERROR: [youtube] abc123: Video unavailable", execErr.Message())
	require.NotContains(t, h.calls.last(), "--restrict-filenames")

	mu.Lock()
	fail = false
	mu.Unlock()
	p := preferences.Default()
	p.RestrictFilenames = true
	h.setPrefs(p)

	require.NoError(t, h.q.Retry(context.Background(), task.ID))
	done, err = h.q.Wait(context.Background(), task.ID)
	require.NoError(t, err)
	require.IsType(t, Completed{}, done.State)
	require.Equal(t, 2, done.Attempt)
	require.Contains(t, h.calls.last(), "--restrict-filenames")
}

func TestQueue_SponsorBlockUnavailableIsSoft(t *testing.T) {
	h := newHarness(t, func(h *harness) ytdlp.EntryPoint {
		ok := successEntry(h.work, "sb.mkv")
		return func(ctx context.Context, args []string, stdout, stderr io.Writer) (int, error) {
			_, _ = ok(ctx, args, stdout, stderr)
			fmt.Fprintln(stderr, "ERROR: Preprocessing: Unable to communicate with SponsorBlock API: HTTP Error 503")
			return 1, nil
		}
	}, nil)
	p := preferences.Default()
	p.SponsorBlock = true
	h.setPrefs(p)

	task := h.addReady(t, MediaVideo)
	require.NoError(t, h.q.Start(context.Background(), task.ID))
	done, err := h.q.Wait(context.Background(), task.ID)
	require.NoError(t, err)

	require.Equal(t, Completed{FilePath: filepath.Join(h.dl, "video", "sb.mkv")}, done.State)
	require.Len(t, h.hist.records(), 1)
}

func TestQueue_PrivateModeSkipsHistory(t *testing.T) {
	h := newHarness(t, func(h *harness) ytdlp.EntryPoint { return successEntry(h.work, "p.mkv") }, nil)
	p := preferences.Default()
	p.PrivateMode = true
	h.setPrefs(p)

	task := h.addReady(t, MediaVideo)
	require.NoError(t, h.q.Start(context.Background(), task.ID))
	done, err := h.q.Wait(context.Background(), task.ID)
	require.NoError(t, err)
	require.IsType(t, Completed{}, done.State)
	require.Empty(t, h.hist.records())
}

func TestQueue_CookiesMaterializedPerRun(t *testing.T) {
	cookies := &fakeCookies{path: "/tmp/plain-cookies.txt", cleaned: make(chan struct{})}
	h := newHarness(t, func(h *harness) ytdlp.EntryPoint { return successEntry(h.work, "c.mkv") }, func(o *Options) {
		o.CookiesFile = "/secure/cookies.sealed"
		o.Cookies = cookies
	})
	p := preferences.Default()
	p.Cookies = true
	h.setPrefs(p)

	task := h.addReady(t, MediaVideo)
	require.NoError(t, h.q.Start(context.Background(), task.ID))
	_, err := h.q.Wait(context.Background(), task.ID)
	require.NoError(t, err)

	args := h.calls.last()
	i := slices.Index(args, "--cookies")
	require.GreaterOrEqual(t, i, 0)
	require.Equal(t, "/tmp/plain-cookies.txt", args[i+1])

	select {
	case <-cookies.cleaned:
	case <-time.After(time.Second):
		t.Fatal("cookies cleanup not called")
	}
}

func TestQueue_ConcurrencyLimit(t *testing.T) {
	release := make(chan struct{})
	var once sync.Once
	h := newHarness(t, func(h *harness) ytdlp.EntryPoint {
		return func(ctx context.Context, args []string, stdout, stderr io.Writer) (int, error) {
			<-release
			return 0, nil
		}
	}, func(o *Options) { o.MaxConcurrent = 1 })
	t.Cleanup(func() { once.Do(func() { close(release) }) })

	a := h.addReady(t, MediaVideo)
	b := h.addReady(t, MediaVideo)
	require.NoError(t, h.q.Start(context.Background(), a.ID))
	waitFor(t, h.q, a.ID, func(s DownloadState) bool { return isRunning(s) })

	require.NoError(t, h.q.Start(context.Background(), b.ID))
	require.Never(t, func() bool {
		task, _ := h.q.Get(b.ID)
		return isRunning(task.State)
	}, 100*time.Millisecond, 10*time.Millisecond)

	once.Do(func() { close(release) })
	done, err := h.q.Wait(context.Background(), b.ID)
	require.NoError(t, err)
	require.IsType(t, Completed{}, done.State)
}

func TestQueue_CancelWhileWaitingForSlot(t *testing.T) {
	release := make(chan struct{})
	h := newHarness(t, func(h *harness) ytdlp.EntryPoint {
		return func(ctx context.Context, args []string, stdout, stderr io.Writer) (int, error) {
			select {
			case <-release:
			case <-ctx.Done():
			}
			return 0, nil
		}
	}, func(o *Options) { o.MaxConcurrent = 1 })
	defer close(release)

	a := h.addReady(t, MediaVideo)
	b := h.addReady(t, MediaVideo)
	require.NoError(t, h.q.Start(context.Background(), a.ID))
	waitFor(t, h.q, a.ID, func(s DownloadState) bool { return isRunning(s) })
	require.NoError(t, h.q.Start(context.Background(), b.ID))

	require.NoError(t, h.q.Cancel(b.ID))
	done, err := h.q.Wait(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, Canceled{}, done.State)
	require.Equal(t, 1, h.calls.calls())
}

func TestQueue_FetchInfoFailure(t *testing.T) {
	h := newHarness(t, func(h *harness) ytdlp.EntryPoint { return successEntry(h.work, "x") }, func(o *Options) {
		o.Fetcher = fakeFetcher{err: errors.New("unsupported url")}
	})

	task, err := h.q.Add(testURL, MediaVideo)
	require.NoError(t, err)
	require.Error(t, h.q.FetchInfo(context.Background(), task.ID))

	got, _ := h.q.Get(task.ID)
	require.EqualError(t, got.State.(Error).Err, "unsupported url")
}

func TestQueue_InvalidOperations(t *testing.T) {
	h := newHarness(t, func(h *harness) ytdlp.EntryPoint { return successEntry(h.work, "x") }, nil)

	task, err := h.q.Add(testURL, MediaVideo)
	require.NoError(t, err)

	require.ErrorIs(t, h.q.Start(context.Background(), task.ID), ErrInvalidTransition)
	require.ErrorIs(t, h.q.Retry(context.Background(), task.ID), ErrInvalidTransition)
	require.ErrorIs(t, h.q.ApplySelection(task.ID, selection.Result{}), ErrInvalidTransition)

	missing := uuid.New()
	require.ErrorIs(t, h.q.Start(context.Background(), missing), ErrTaskNotFound)
	require.ErrorIs(t, h.q.Cancel(missing), ErrTaskNotFound)
	require.ErrorIs(t, h.q.Remove(missing), ErrTaskNotFound)
	require.ErrorIs(t, h.q.FetchInfo(context.Background(), missing), ErrTaskNotFound)

	_, err = h.q.Add("  ", MediaVideo)
	require.Error(t, err)
	_, err = h.q.AddPlaylistItem("https://example.com/list", "", 0, testURL, MediaVideo)
	require.Error(t, err)
}

func TestQueue_ApplySelection(t *testing.T) {
	h := newHarness(t, func(h *harness) ytdlp.EntryPoint { return successEntry(h.work, "sel.m4a") }, nil)
	task := h.addReady(t, MediaVideo)

	ready := task.State.(ReadyWithInfo)
	res := selection.Merge(selection.Input{
		Preferences: preferences.Default(),
		Info:        ready.Info,
		Formats:     []videoinfo.Format{{FormatID: "140", VCodec: "none", ACodec: "mp4a", FileSize: 1024}},
		NewTitle:    "Picked",
	})
	require.NoError(t, h.q.ApplySelection(task.ID, res))

	got, _ := h.q.Get(task.ID)
	require.Equal(t, "Picked", got.View.Title)

	require.NoError(t, h.q.Start(context.Background(), task.ID))
	done, err := h.q.Wait(context.Background(), task.ID)
	require.NoError(t, err)
	require.Equal(t, Completed{FilePath: filepath.Join(h.dl, "audio", "sel.m4a")}, done.State)

	args := h.calls.last()
	require.Contains(t, args, "-x")
	i := slices.Index(args, "-f")
	require.Equal(t, "140", args[i+1])
}

func TestQueue_PlaylistItemTargetsPlaylist(t *testing.T) {
	h := newHarness(t, func(h *harness) ytdlp.EntryPoint { return successEntry(h.work, "item.mkv") }, nil)
	p := preferences.Default()
	p.DownloadPlaylist = true
	h.setPrefs(p)

	task, err := h.q.AddPlaylistItem("https://www.youtube.com/playlist?list=PL1", "", 3, testURL, MediaVideo)
	require.NoError(t, err)
	require.NoError(t, h.q.FetchInfo(context.Background(), task.ID))
	require.NoError(t, h.q.Start(context.Background(), task.ID))
	_, err = h.q.Wait(context.Background(), task.ID)
	require.NoError(t, err)

	args := h.calls.last()
	require.Equal(t, "https://www.youtube.com/playlist?list=PL1", args[len(args)-1])
	i := slices.Index(args, "--playlist-items")
	require.Equal(t, "3", args[i+1])
}

func TestQueue_PlaylistTitleSubdirectory(t *testing.T) {
	h := newHarness(t, func(h *harness) ytdlp.EntryPoint {
		return func(ctx context.Context, args []string, stdout, stderr io.Writer) (int, error) {
			rel := filepath.Join("My List", "A Video.mkv")
			path := filepath.Join(h.work, rel)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return 1, err
			}
			if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
				return 1, err
			}
			fmt.Fprintf(stdout, "[download] Destination: %s\n", rel)
			return 0, nil
		}
	}, nil)
	p := preferences.Default()
	p.DownloadPlaylist = true
	p.SubdirectoryPlaylistTitle = true
	h.setPrefs(p)

	task, err := h.q.AddPlaylistItem("https://www.youtube.com/playlist?list=PL1", "My List", 2, testURL, MediaVideo)
	require.NoError(t, err)
	require.NoError(t, h.q.FetchInfo(context.Background(), task.ID))

	got, _ := h.q.Get(task.ID)
	info := got.State.(ReadyWithInfo).Info
	require.Equal(t, "My List", info.Playlist)
	require.Equal(t, 2, info.PlaylistIndex)

	require.NoError(t, h.q.Start(context.Background(), task.ID))
	done, err := h.q.Wait(context.Background(), task.ID)
	require.NoError(t, err)

	args := h.calls.last()
	i := slices.Index(args, "-o")
	require.GreaterOrEqual(t, i, 0)
	require.True(t, strings.HasPrefix(args[i+1], "%(playlist)s/"), args[i+1])

	want := filepath.Join(h.dl, "video", "My List", "A Video.mkv")
	require.Equal(t, Completed{FilePath: want}, done.State)
	require.FileExists(t, want)
	recs := h.hist.records()
	require.Len(t, recs, 1)
	require.Equal(t, want, recs[0].FilePath)
}

func TestQueue_ListAndRemove(t *testing.T) {
	h := newHarness(t, func(h *harness) ytdlp.EntryPoint { return successEntry(h.work, "x") }, nil)

	a, err := h.q.Add("https://vimeo.com/1", MediaVideo)
	require.NoError(t, err)
	b, err := h.q.Add("https://vimeo.com/2", MediaAudio)
	require.NoError(t, err)

	list := h.q.List()
	require.Len(t, list, 2)
	require.Equal(t, a.ID, list[0].ID)
	require.Equal(t, b.ID, list[1].ID)

	require.NoError(t, h.q.Remove(a.ID))
	list = h.q.List()
	require.Len(t, list, 1)
	require.Equal(t, b.ID, list[0].ID)

	_, ok := h.q.Get(a.ID)
	require.False(t, ok)
}
