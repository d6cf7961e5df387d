package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fakeyudi/jumplab/internal/recording"
)

// Settle is how long a raw file must stay unchanged before Watch processes it.
const Settle = 500 * time.Millisecond

// Watch processes recordings as they appear in opts.RawDir until ctx is
// cancelled. Each file is handled once its writes have settled; onDone is
// called with the outcome.
func Watch(ctx context.Context, opts Options, onDone func(FileResult, error)) error {
	if err := opts.Smoothing.Validate(); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(opts.RawDir); err != nil {
		return err
	}

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(Settle / 5)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			base := filepath.Base(event.Name)
			if strings.HasPrefix(base, ".") || !strings.EqualFold(filepath.Ext(base), recording.Ext) {
				continue
			}
			pending[event.Name] = time.Now()

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < Settle {
					continue
				}
				delete(pending, path)
				fr, err := ProcessFile(path, opts)
				if err != nil {
					slog.Warn("file failed", "path", path, "err", err)
				} else {
					slog.Info("processed", "path", path, "output", fr.Output, "events", fr.Events)
				}
				if onDone != nil {
					onDone(fr, err)
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Watcher errors are non-fatal; continue watching.
			slog.Warn("watch error", "dir", opts.RawDir, "err", err)
		}
	}
}
