package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/starford/folio/internal/storage"
)

// Change kinds reported to an EventCallback.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// EventCallback is called once per changed path after the debounce window.
// path is relative to the content root with forward slashes; it names either
// a category directory or a Markdown document.
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the content root and its category
// directories and reports changes until ctx is cancelled. Events for the same
// path inside the debounce window collapse into one, the last kind wins,
// except that created followed by updated stays created.
func Watch(ctx context.Context, store storage.Provider, filter *Filter, debounce time.Duration, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := w.Add(root); err != nil {
		return err
	}
	entries, err := store.ReadDir("")
	if err != nil {
		return err
	}
	for _, e := range entries {
		if isDir(store, e.Name(), e) && !filter.Excluded(e.Name()) {
			if err := w.Add(filepath.Join(root, e.Name())); err != nil {
				logger.Warn("watcher: add category failed",
					slog.String("category", e.Name()),
					slog.String("error", err.Error()))
			}
		}
	}

	logger.Info("watcher: started", slog.String("root", root))

	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	pending := make(map[string]string)
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	record := func(kind, rel string) {
		if prev, ok := pending[rel]; ok && prev == KindCreated && kind == KindUpdated {
			kind = KindCreated
		}
		pending[rel] = kind
		if flushTimer == nil {
			flushTimer = time.NewTimer(debounce)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			for rel, kind := range pending {
				logger.Debug("watcher: change", slog.String("path", rel), slog.String("op", kind))
				if cb != nil {
					cb(kind, rel)
				}
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil || rel == "." {
				continue
			}
			dir, name := filepath.Split(rel)
			dir = filepath.Clean(dir)

			// Root-level events: only directories are interesting.
			if dir == "." {
				if filter.Excluded(name) {
					continue
				}
				switch {
				case ev.Op&fsnotify.Create != 0:
					info, statErr := store.Stat(name)
					if statErr != nil || !info.IsDir() {
						continue
					}
					if addErr := w.Add(ev.Name); addErr != nil {
						logger.Warn("watcher: add new category failed",
							slog.String("path", rel),
							slog.String("error", addErr.Error()))
					}
					record(KindCreated, name)
				case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
					// The entry is gone so it cannot be stat'ed; fsnotify drops
					// the directory watch on its own.
					record(KindDeleted, name)
				}
				continue
			}

			if !IsDocument(name) {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&fsnotify.Create != 0:
				record(KindCreated, rel)
			case ev.Op&fsnotify.Write != 0:
				record(KindUpdated, rel)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				record(KindDeleted, rel)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
