package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/macropower/csvr/pkg/log"
)

// Watch polls Dir every Period until ctx is done. Each file found is moved
// into Work and emitted as a task that removes the file once processed. A
// poll that emits nothing is followed by a sleep of Period; a poll that
// emits anything is followed immediately by the next poll.
//
// Files that cannot be staged are logged and left in place, to be retried
// on a later poll.
type Watch struct {
	// Sleep waits for d or until ctx is done. Defaults to a timer.
	Sleep  func(ctx context.Context, d time.Duration)
	Dir    string
	Work   string
	Period time.Duration
	// Notify wakes an empty poll's sleep early when the directory changes.
	Notify bool
}

func (w *Watch) Run(ctx context.Context, emit func(Task)) error {
	if w.Work == "" {
		return ErrNoStaging
	}

	logger := log.WithContext(ctx).With(slog.String("dir", w.Dir))

	sleep := w.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	if w.Notify {
		n, err := newNotifier(w.Dir)
		if err != nil {
			return err
		}
		defer n.Close()

		sleep = n.sleep
	}

	logger.InfoContext(ctx, "watching directory",
		slog.String("work", w.Work),
		slog.Duration("period", w.Period),
		slog.Bool("notify", w.Notify),
	)

	for ctx.Err() == nil {
		emitted, err := w.poll(ctx, emit)
		if err != nil {
			// Listing failures are transient, e.g. the directory being replaced.
			logger.ErrorContext(ctx, "poll directory", slog.Any("error", err))
		}

		if emitted == 0 {
			sleep(ctx, w.Period)
		}
	}

	logger.InfoContext(ctx, "stopped watching directory")

	return nil
}

func (w *Watch) poll(ctx context.Context, emit func(Task)) (int, error) {
	files, err := listFiles(w.Dir)
	if err != nil {
		return 0, err
	}

	emitted := 0

	for _, name := range files {
		if ctx.Err() != nil {
			break
		}

		path, err := stage(ctx, w.Dir, w.Work, name)
		if err != nil {
			log.WithContext(ctx).ErrorContext(ctx, "skip file", slog.Any("error", err))

			continue
		}

		emit(Task{Path: path, Remove: true})
		emitted++
	}

	return emitted, nil
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// notifier wakes a sleeping watch loop on directory changes.
type notifier struct {
	watcher *fsnotify.Watcher
}

func newNotifier(dir string) (*notifier, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	err = watcher.Add(dir)
	if err != nil {
		_ = watcher.Close()

		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &notifier{watcher: watcher}, nil
}

func (n *notifier) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-t.C:
			return

		case evt, ok := <-n.watcher.Events:
			if !ok {
				sleepContext(ctx, d)

				return
			}

			// Staging renames files out of the directory. Files moved in
			// arrive as Create.
			if evt.Has(fsnotify.Create) || evt.Has(fsnotify.Write) {
				log.WithContext(ctx).DebugContext(ctx, "directory changed",
					slog.String("event", evt.String()),
				)

				return
			}

		case err, ok := <-n.watcher.Errors:
			if !ok {
				sleepContext(ctx, d)

				return
			}

			log.WithContext(ctx).WarnContext(ctx, "fsnotify error", slog.Any("error", err))
		}
	}
}

func (n *notifier) Close() error {
	err := n.watcher.Close()
	if err != nil {
		return fmt.Errorf("close fsnotify watcher: %w", err)
	}

	return nil
}
