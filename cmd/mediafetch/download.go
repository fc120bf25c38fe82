package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"thirdcoast.systems/mediafetch/internal/queue"
	"thirdcoast.systems/mediafetch/pkg/utils/format"
)

// progressPrinter renders queue updates: progress on one rewritten line per
// task, everything else on its own line.
type progressPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	running bool
}

func (p *progressPrinter) update(t queue.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()

	name := t.View.Title
	if name == "" {
		name = t.URL
	}
	name = format.Truncate(name, 40)

	if r, ok := t.State.(queue.Running); ok {
		text := r.ProgressText
		if text == "" {
			text = "starting"
		}
		fmt.Fprintf(p.w, "\r%-40s  %s\x1b[K", name, text)
		p.running = true
		return
	}
	if p.running {
		fmt.Fprintln(p.w)
		p.running = false
	}

	switch s := t.State.(type) {
	case queue.Completed:
		fmt.Fprintf(p.w, "%-40s  done %s\n", name, s.FilePath)
	case queue.Error:
		fmt.Fprintf(p.w, "%-40s  failed: %v\n", name, s.Err)
	case queue.Canceled:
		fmt.Fprintf(p.w, "%-40s  canceled at %s\n", name, format.Percent(s.Progress))
	case queue.ReadyWithInfo:
		fmt.Fprintf(p.w, "%-40s  queued\n", name)
	}
}

func newDownloadCmd(c *cli) *cobra.Command {
	var (
		sel       selectionFlags
		items     string
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "download <url>...",
		Short: "Download one or more videos",
		Long: `download probes each URL, applies the selection flags and runs the
downloads through the queue. With --items the single URL is treated as a
playlist and each picked entry becomes its own task.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !noHistory {
				if _, err := c.app.OpenHistory(ctx); err != nil {
					return err
				}
			}
			if items != "" {
				if len(args) != 1 {
					return fmt.Errorf("--items takes exactly one playlist url")
				}
				c.app.Preferences.DownloadPlaylist = true
			}
			if sel.audio {
				c.app.Preferences.ExtractAudio = true
			}

			q, err := c.app.NewQueue()
			if err != nil {
				return err
			}
			printer := &progressPrinter{w: cmd.OutOrStdout()}
			q.OnUpdate(printer.update)

			mediaType := queue.MediaVideo
			if sel.audio {
				mediaType = queue.MediaAudio
			}

			var ids []uuid.UUID
			if items != "" {
				ids, err = c.addPlaylist(ctx, q, args[0], items, mediaType)
			} else {
				ids, err = c.addURLs(q, args, mediaType)
			}
			if err != nil {
				return err
			}

			started := make([]uuid.UUID, 0, len(ids))
			for _, id := range ids {
				if err := q.FetchInfo(ctx, id); err != nil {
					continue
				}
				if sel.any() {
					if err := applySelection(q, id, &sel, c); err != nil {
						return err
					}
				}
				if err := q.Start(ctx, id); err != nil {
					if errors.Is(err, queue.ErrAlreadyDownloaded) {
						continue
					}
					return err
				}
				started = append(started, id)
			}

			return waitAll(ctx, q, started, ids)
		},
	}

	sel.bind(cmd)
	cmd.Flags().StringVar(&items, "items", "", "Treat the url as a playlist and download these indices, e.g. 1,3-5")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record finished downloads")
	return cmd
}

func (c *cli) addURLs(q *queue.Queue, urls []string, mt queue.MediaType) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(urls))
	for _, u := range urls {
		t, err := q.Add(u, mt)
		if err != nil {
			return nil, err
		}
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func (c *cli) addPlaylist(ctx context.Context, q *queue.Queue, url, items string, mt queue.MediaType) ([]uuid.UUID, error) {
	indices, err := parseIndices(items)
	if err != nil {
		return nil, err
	}
	result, err := c.app.Client.FetchPlaylist(ctx, url)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	for _, i := range indices {
		entry, ok := result.Entry(i)
		if !ok {
			return nil, fmt.Errorf("playlist has no entry %d", i)
		}
		t, err := q.AddPlaylistItem(url, result.Title, i, entry.URL, mt)
		if err != nil {
			return nil, err
		}
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func applySelection(q *queue.Queue, id uuid.UUID, sel *selectionFlags, c *cli) error {
	t, ok := q.Get(id)
	if !ok {
		return queue.ErrTaskNotFound
	}
	ready, ok := t.State.(queue.ReadyWithInfo)
	if !ok {
		return nil
	}
	res, err := sel.merge(c.app.Preferences.Clone(), ready.Info)
	if err != nil {
		return err
	}
	return q.ApplySelection(id, res)
}

// waitAll waits for every started task. An interrupt cancels whatever is
// still running and waits for teardown.
func waitAll(ctx context.Context, q *queue.Queue, started, all []uuid.UUID) error {
	for _, id := range started {
		if _, err := q.Wait(ctx, id); err != nil {
			for _, id := range started {
				_ = q.Cancel(id)
			}
			for _, id := range started {
				_, _ = q.Wait(context.WithoutCancel(ctx), id)
			}
			return err
		}
	}

	failed := 0
	for _, id := range all {
		t, ok := q.Get(id)
		if !ok {
			continue
		}
		if s, isErr := t.State.(queue.Error); isErr && !errors.Is(s.Err, queue.ErrAlreadyDownloaded) {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(all))
	}
	return nil
}
