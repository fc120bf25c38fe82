// Package queue runs downloads: it owns each task's state, compiles a fresh
// plan per attempt, hands it to an executor and reconciles what comes back.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"thirdcoast.systems/mediafetch/internal/compiler"
	"thirdcoast.systems/mediafetch/internal/history"
	"thirdcoast.systems/mediafetch/internal/preferences"
	"thirdcoast.systems/mediafetch/internal/selection"
	"thirdcoast.systems/mediafetch/internal/videoid"
	"thirdcoast.systems/mediafetch/pkg/utils/format"
	"thirdcoast.systems/mediafetch/pkg/videoinfo"
	"thirdcoast.systems/mediafetch/pkg/ytdlp"
)

var (
	ErrTaskNotFound      = errors.New("queue: task not found")
	ErrInvalidTransition = errors.New("queue: invalid state transition")
	ErrAlreadyDownloaded = errors.New("queue: already in the download archive")
)

// InfoFetcher probes a URL for metadata. *ytdlp.Client implements it.
type InfoFetcher interface {
	FetchVideoInfo(ctx context.Context, url string, extraArgs ...string) (videoinfo.VideoInfo, error)
}

// CookieMaterializer turns the configured cookie file into a path yt-dlp can
// read for one run. *cookievault.Vault implements it.
type CookieMaterializer interface {
	Materialize(path string) (string, func(), error)
}

// HistoryStore records finished downloads. *history.Store implements it.
type HistoryStore interface {
	Insert(ctx context.Context, r history.Record) error
}

// Options wires a Queue.
type Options struct {
	Executor ytdlp.Executor
	Fetcher  InfoFetcher

	// Preferences is read at the start of every attempt, so a retry picks up
	// changed settings.
	Preferences func() preferences.Preferences

	Dirs        Dirs
	ArchiveFile string
	CookiesFile string
	Cookies     CookieMaterializer
	History     HistoryStore
	Env         []string

	// MaxConcurrent caps simultaneous runs. Values below 1 mean 1.
	MaxConcurrent int64

	Now func() time.Time
}

type entry struct {
	task  Task
	info  *videoinfo.VideoInfo
	prefs *preferences.Preferences

	run    *ytdlp.Run
	cancel context.CancelFunc
	done   chan struct{}
}

// Queue is safe for concurrent use.
type Queue struct {
	opts Options
	sem  *semaphore.Weighted

	// notifyMu is held from a state commit until every listener has seen
	// it, so snapshots reach listeners in commit order. It is always taken
	// before mu.
	notifyMu sync.Mutex

	mu        sync.Mutex
	tasks     map[uuid.UUID]*entry
	order     []uuid.UUID
	listeners []func(Task)

	// afterMove, when set, runs between moving the output and committing
	// Finished. Tests use it to land a cancel in that window.
	afterMove func(uuid.UUID)
}

// New builds a queue.
func New(opts Options) *Queue {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	if opts.Preferences == nil {
		opts.Preferences = preferences.Default
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Queue{
		opts:  opts,
		sem:   semaphore.NewWeighted(opts.MaxConcurrent),
		tasks: make(map[uuid.UUID]*entry),
	}
}

// OnUpdate registers fn to receive a snapshot after every state change, in
// the order the changes were made. fn runs on the goroutine that caused the
// change and should return quickly. It may call Get or List but must not
// call methods that change task state.
func (q *Queue) OnUpdate(fn func(Task)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.listeners = append(q.listeners, fn)
}

func (q *Queue) notify(t Task) {
	q.mu.Lock()
	listeners := slices.Clone(q.listeners)
	q.mu.Unlock()

	for _, fn := range listeners {
		fn(t)
	}
}

// Add creates an Idle task for url.
func (q *Queue) Add(url string, mediaType MediaType) (Task, error) {
	return q.add(url, mediaType, "", "", 0)
}

// AddPlaylistItem creates an Idle task for entry index (1-based) of a
// playlist. playlistTitle comes from the flat playlist dump; the entry probe
// runs without playlist context and cannot report it.
func (q *Queue) AddPlaylistItem(playlistURL, playlistTitle string, index int, entryURL string, mediaType MediaType) (Task, error) {
	if index < 1 {
		return Task{}, fmt.Errorf("queue: invalid playlist index %d", index)
	}
	return q.add(entryURL, mediaType, playlistURL, playlistTitle, index)
}

func (q *Queue) add(url string, mediaType MediaType, playlistURL, playlistTitle string, item int) (Task, error) {
	normalized, _, err := videoid.NormalizeSourceURL(url)
	if err != nil {
		return Task{}, fmt.Errorf("queue: invalid url: %w", err)
	}

	t := Task{
		ID:            uuid.New(),
		URL:           url,
		SourceURL:     normalized,
		MediaType:     mediaType,
		State:         Idle{},
		PlaylistURL:   playlistURL,
		PlaylistTitle: playlistTitle,
		PlaylistItem:  item,
		CreatedAt:     q.opts.Now(),
	}

	q.notifyMu.Lock()
	defer q.notifyMu.Unlock()

	q.mu.Lock()
	q.tasks[t.ID] = &entry{task: t}
	q.order = append(q.order, t.ID)
	q.mu.Unlock()

	slog.Info("queue: Task added", "id", t.ID, "url", url, "media", mediaType)
	q.notify(t)
	return t, nil
}

// Get returns a snapshot of the task.
func (q *Queue) Get(id uuid.UUID) (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.tasks[id]
	if !ok {
		return Task{}, false
	}
	return e.task, true
}

// List returns snapshots in insertion order.
func (q *Queue) List() []Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Task, 0, len(q.order))
	for _, id := range q.order {
		out = append(out, q.tasks[id].task)
	}
	return out
}

// apply feeds ev through Reconcile. attempt 0 matches any attempt; otherwise
// events from a superseded run are dropped.
func (q *Queue) apply(id uuid.UUID, attempt int, ev Event) (Task, bool) {
	q.notifyMu.Lock()
	defer q.notifyMu.Unlock()

	q.mu.Lock()
	e, ok := q.tasks[id]
	if !ok || (attempt != 0 && e.task.Attempt != attempt) {
		q.mu.Unlock()
		return Task{}, false
	}
	next, accepted := Reconcile(e.task.State, ev)
	if !accepted {
		q.mu.Unlock()
		return e.task, false
	}
	e.task.State = next
	t := e.task
	q.mu.Unlock()

	q.notify(t)
	return t, true
}

func invalid(op string, s DownloadState) error {
	return fmt.Errorf("%w: cannot %s a task that is %s", ErrInvalidTransition, op, s)
}

// FetchInfo probes the task's URL and moves it to ReadyWithInfo. It blocks
// for the duration of the probe.
func (q *Queue) FetchInfo(ctx context.Context, id uuid.UUID) error {
	q.mu.Lock()
	e, ok := q.tasks[id]
	if !ok {
		q.mu.Unlock()
		return ErrTaskNotFound
	}
	url := e.task.URL
	playlistTitle, item := e.task.PlaylistTitle, e.task.PlaylistItem
	q.mu.Unlock()

	t, accepted := q.apply(id, 0, FetchStarted{})
	if !accepted {
		return invalid("fetch info for", t.State)
	}

	info, err := q.opts.Fetcher.FetchVideoInfo(ctx, url)
	if err != nil {
		slog.Error("queue: Failed to fetch info", "id", id, "url", url, "error", err)
		q.apply(id, 0, FetchFailed{Err: err})
		return err
	}
	if item > 0 {
		if info.Playlist == "" {
			info.Playlist = playlistTitle
		}
		if info.PlaylistIndex == 0 {
			info.PlaylistIndex = item
		}
	}

	q.mu.Lock()
	if e, ok := q.tasks[id]; ok {
		e.info = &info
		e.task.View = newView(info)
	}
	q.mu.Unlock()

	q.apply(id, 0, InfoFetched{Info: info})
	return nil
}

// ApplySelection replaces a ready task's metadata and preferences with a
// format-picker merge.
func (q *Queue) ApplySelection(id uuid.UUID, res selection.Result) error {
	q.notifyMu.Lock()
	defer q.notifyMu.Unlock()

	q.mu.Lock()
	e, ok := q.tasks[id]
	if !ok {
		q.mu.Unlock()
		return ErrTaskNotFound
	}
	if _, ready := e.task.State.(ReadyWithInfo); !ready {
		s := e.task.State
		q.mu.Unlock()
		return invalid("apply a selection to", s)
	}
	info, prefs := res.Info, res.Preferences.Clone()
	e.info, e.prefs = &info, &prefs
	e.task.State = ReadyWithInfo{Info: info}
	e.task.View = newView(info)
	t := e.task
	q.mu.Unlock()

	q.notify(t)
	return nil
}

func (q *Queue) preferencesFor(e *entry) preferences.Preferences {
	var p preferences.Preferences
	if e.prefs != nil {
		p = e.prefs.Clone()
	} else {
		p = q.opts.Preferences().Clone()
	}
	if e.task.MediaType == MediaAudio {
		p.ExtractAudio = true
	}
	return p
}

// Start compiles a plan and launches it in the background. The archive
// pre-flight runs synchronously: a hit moves the task to Error and returns
// ErrAlreadyDownloaded without launching anything.
func (q *Queue) Start(ctx context.Context, id uuid.UUID) error {
	q.mu.Lock()
	e, ok := q.tasks[id]
	if !ok {
		q.mu.Unlock()
		return ErrTaskNotFound
	}
	ready, isReady := e.task.State.(ReadyWithInfo)
	if !isReady {
		s := e.task.State
		q.mu.Unlock()
		return invalid("start", s)
	}

	info := ready.Info
	prefs := q.preferencesFor(e)
	task := e.task
	e.task.Attempt++
	attempt := e.task.Attempt
	done := make(chan struct{})
	e.done = done
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	q.mu.Unlock()

	plan := compiler.BuildDownloadPlan(info, prefs, task.PlaylistURL, task.PlaylistItem)

	if plan.NeedsArchiveFile() && q.opts.ArchiveFile != "" {
		found, err := archiveContains(q.opts.ArchiveFile, info.ArchiveKey())
		if err != nil {
			slog.Warn("queue: Download archive unreadable, continuing", "path", q.opts.ArchiveFile, "error", err)
		}
		if found {
			slog.Info("queue: Already downloaded", "id", id, "key", info.ArchiveKey())
			q.apply(id, attempt, Failed{Err: ErrAlreadyDownloaded})
			cancel()
			close(done)
			return ErrAlreadyDownloaded
		}
	}

	target := info.URL()
	if target == "" || plan.Has("--playlist-items") {
		target = task.URL
		if task.PlaylistURL != "" && plan.Has("--playlist-items") {
			target = task.PlaylistURL
		}
	}

	go q.run(runCtx, cancel, id, attempt, plan, info, prefs, target, done)
	return nil
}

func (q *Queue) workDir() string {
	if q.opts.Dirs.Work != "" {
		return q.opts.Dirs.Work
	}
	return q.opts.Dirs.Download
}

func progressText(p ytdlp.Progress) string {
	text := format.Percent(p.Fraction)
	if p.Size != "" {
		text += " of " + p.Size
	}
	if p.Speed != "" {
		text += " at " + p.Speed
	}
	if p.ETA != "" {
		text += ", ETA " + p.ETA
	}
	return text
}

func (q *Queue) run(ctx context.Context, cancel context.CancelFunc, id uuid.UUID, attempt int, plan *ytdlp.Plan,
	info videoinfo.VideoInfo, prefs preferences.Preferences, target string, done chan struct{}) {
	defer close(done)
	defer cancel()

	if err := q.sem.Acquire(ctx, 1); err != nil {
		q.apply(id, attempt, CancelRequested{})
		return
	}
	defer q.sem.Release(1)

	// A cancel while waiting for a slot already moved the task on.
	if _, ok := q.apply(id, attempt, RunStarted{}); !ok {
		return
	}

	cfg := ytdlp.ExecConfig{
		WorkDir:     q.workDir(),
		ArchiveFile: q.opts.ArchiveFile,
		Env:         q.opts.Env,
		URL:         target,
	}
	if plan.NeedsCookiesFile() && q.opts.CookiesFile != "" {
		cfg.CookiesFile = q.opts.CookiesFile
		if q.opts.Cookies != nil {
			path, cleanup, err := q.opts.Cookies.Materialize(q.opts.CookiesFile)
			if err != nil {
				q.apply(id, attempt, Failed{Err: fmt.Errorf("prepare cookies: %w", err)})
				return
			}
			defer cleanup()
			cfg.CookiesFile = path
		}
	}

	onStdout := func(line string) {
		if p, ok := ytdlp.ParseProgress(line); ok {
			q.apply(id, attempt, ProgressUpdated{Progress: p.Fraction, Text: progressText(p)})
		}
	}

	run, err := q.opts.Executor.Start(ctx, plan, cfg, onStdout, nil)
	if err != nil {
		slog.Error("queue: Failed to start download", "id", id, "error", err)
		q.apply(id, attempt, Failed{Err: err})
		return
	}

	q.mu.Lock()
	if e, ok := q.tasks[id]; ok && e.task.Attempt == attempt {
		e.run = run
	}
	q.mu.Unlock()

	res, err := run.Wait()

	q.mu.Lock()
	if e, ok := q.tasks[id]; ok && e.task.Attempt == attempt {
		e.run = nil
	}
	q.mu.Unlock()

	switch {
	case errors.Is(err, ytdlp.ErrCanceled):
		q.apply(id, attempt, CancelRequested{})
		return
	case err != nil && ytdlp.IsSponsorBlockUnavailable(err):
		slog.Warn("queue: SponsorBlock unavailable, keeping downloaded output", "id", id)
	case err != nil:
		slog.Error("queue: Download failed", "id", id, "error", err)
		q.apply(id, attempt, Failed{Err: err})
		return
	}

	// A cancel that lands after the process exited still discards the result.
	if t, ok := q.Get(id); !ok || t.Attempt != attempt || !isRunning(t.State) {
		return
	}

	path := q.moveOutput(info, prefs, plan, res)
	if q.afterMove != nil {
		q.afterMove(id)
	}
	if _, ok := q.apply(id, attempt, Finished{FilePath: path}); !ok {
		slog.Info("queue: Canceled before completion, not recording history", "id", id)
		return
	}
	q.record(context.WithoutCancel(ctx), info, prefs, plan, path)
}

func isRunning(s DownloadState) bool {
	_, ok := s.(Running)
	return ok
}

// moveOutput moves the produced file to its destination and returns the
// final path. Failures are logged; the download itself already succeeded.
func (q *Queue) moveOutput(info videoinfo.VideoInfo, prefs preferences.Preferences, plan *ytdlp.Plan, res ytdlp.Result) string {
	src := ytdlp.DestinationPath(res.Stdout)
	if src == "" {
		slog.Warn("queue: No destination announced by yt-dlp", "id", info.ID)
		return ""
	}
	work := q.workDir()
	if !filepath.IsAbs(src) {
		src = filepath.Join(work, src)
	}

	dir := destinationDir(q.opts.Dirs, prefs, plan.DownloadPathHint(), info)
	moved, err := moveInto(src, work, dir)
	if err != nil {
		slog.Error("queue: Failed to move download", "src", src, "dir", dir, "error", err)
		return src
	}
	return moved
}

// record inserts a history row for a completed download.
func (q *Queue) record(ctx context.Context, info videoinfo.VideoInfo, prefs preferences.Preferences, plan *ytdlp.Plan, path string) {
	if path == "" || prefs.PrivateMode || q.opts.History == nil {
		return
	}
	rec := history.NewRecord(info, path, plan.DownloadPathHint(), q.opts.Now())
	if err := q.opts.History.Insert(ctx, rec); err != nil {
		slog.Error("queue: Failed to record history", "id", rec.ID, "error", err)
	}
}

// Cancel marks the task Canceled at once and asks the process to stop.
// Teardown finishes in the background.
func (q *Queue) Cancel(id uuid.UUID) error {
	q.notifyMu.Lock()
	q.mu.Lock()
	e, ok := q.tasks[id]
	if !ok {
		q.mu.Unlock()
		q.notifyMu.Unlock()
		return ErrTaskNotFound
	}
	next, accepted := Reconcile(e.task.State, CancelRequested{})
	if !accepted {
		s := e.task.State
		q.mu.Unlock()
		q.notifyMu.Unlock()
		return invalid("cancel", s)
	}
	e.task.State = next
	run, cancel := e.run, e.cancel
	t := e.task
	q.mu.Unlock()

	slog.Info("queue: Task canceled", "id", id)
	q.notify(t)
	q.notifyMu.Unlock()

	if run != nil {
		run.Cancel()
	}
	if cancel != nil {
		cancel()
	}
	return nil
}

// Retry starts a new logical run of a finished, failed or canceled task,
// recompiling the plan from current preferences. Tasks that never got
// metadata are probed first.
func (q *Queue) Retry(ctx context.Context, id uuid.UUID) error {
	q.mu.Lock()
	e, ok := q.tasks[id]
	if !ok {
		q.mu.Unlock()
		return ErrTaskNotFound
	}
	info := e.info
	q.mu.Unlock()

	t, accepted := q.apply(id, 0, RetryRequested{Info: info})
	if !accepted {
		return invalid("retry", t.State)
	}

	if info == nil {
		if err := q.FetchInfo(ctx, id); err != nil {
			return err
		}
	}
	return q.Start(ctx, id)
}

// Remove cancels the task if needed and forgets it.
func (q *Queue) Remove(id uuid.UUID) error {
	t, ok := q.Get(id)
	if !ok {
		return ErrTaskNotFound
	}
	if !IsTerminal(t.State) {
		_ = q.Cancel(id)
	}

	q.mu.Lock()
	delete(q.tasks, id)
	for i, oid := range q.order {
		if oid == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	q.mu.Unlock()

	slog.Info("queue: Task removed", "id", id)
	return nil
}

// Wait blocks until the task's current attempt has fully finished, then
// returns its snapshot. Tasks that were never started return immediately.
func (q *Queue) Wait(ctx context.Context, id uuid.UUID) (Task, error) {
	q.mu.Lock()
	e, ok := q.tasks[id]
	if !ok {
		q.mu.Unlock()
		return Task{}, ErrTaskNotFound
	}
	done := e.done
	q.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return Task{}, ctx.Err()
		}
	}

	t, ok := q.Get(id)
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	return t, nil
}
