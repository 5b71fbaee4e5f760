package events

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/ports"
)

// renameWindow is how long a rename waits for the matching create before it counts as a delete.
const renameWindow = 150 * time.Millisecond

// Watcher turns file system notifications under a root directory into domain events.
// Hidden files and directories (a name starting with ".") are ignored.
type Watcher struct {
	root      string
	publisher ports.EventPublisher
	logger    ports.Logger
	watcher   *fsnotify.Watcher
	now       func() time.Time

	mu            sync.Mutex
	pendingRename string
	renameTimer   *time.Timer
}

// NewWatcher watches root and every non-hidden directory below it.
func NewWatcher(root string, publisher ports.EventPublisher, logger ports.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	watcher := &Watcher{root: root, publisher: publisher, logger: logger, watcher: w, now: time.Now}
	if err := watcher.addTree(root); err != nil {
		_ = w.Close()
		return nil, err
	}
	return watcher, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && hidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Run publishes watch-started and then one event per notification until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	w.publish(ctx, domain.Event{Type: domain.EventWatchStarted})
	for {
		select {
		case <-ctx.Done():
			w.flushRename(ctx)
			return ctx.Err()
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("file watcher error", err, nil)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if w.ignored(ev.Name) {
		return
	}

	switch {
	case ev.Has(fsnotify.Create):
		info, err := os.Stat(ev.Name)
		if err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil && !errors.Is(err, fs.ErrNotExist) {
				w.logger.Warn("cannot watch new directory", map[string]interface{}{"path": ev.Name, "error": err.Error()})
			}
			return
		}
		if old := w.takeRename(); old != "" {
			w.publish(ctx, domain.Event{Type: domain.EventFileRenamed, FilePath: ev.Name, OldFilePath: old})
			return
		}
		w.publish(ctx, domain.Event{Type: domain.EventFileCreated, FilePath: ev.Name})
	case ev.Has(fsnotify.Write):
		w.publish(ctx, domain.Event{Type: domain.EventFileModified, FilePath: ev.Name})
	case ev.Has(fsnotify.Rename):
		w.startRename(ctx, ev.Name)
	case ev.Has(fsnotify.Remove):
		w.publish(ctx, domain.Event{Type: domain.EventFileDeleted, FilePath: ev.Name})
	}
}

// ignored reports whether path lies in a hidden file or directory below root.
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part != "." && part != ".." && hidden(part) {
			return true
		}
	}
	return false
}

// fsnotify reports a rename as Rename(old) followed by Create(new) when both names are watched.
func (w *Watcher) startRename(ctx context.Context, old string) {
	w.flushRename(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pendingRename = old
	w.renameTimer = time.AfterFunc(renameWindow, func() { w.flushRename(ctx) })
}

func (w *Watcher) takeRename() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	old := w.pendingRename
	w.pendingRename = ""
	if w.renameTimer != nil {
		w.renameTimer.Stop()
		w.renameTimer = nil
	}
	return old
}

// flushRename reports a rename without a matching create as a delete.
func (w *Watcher) flushRename(ctx context.Context) {
	if old := w.takeRename(); old != "" {
		w.publish(context.WithoutCancel(ctx), domain.Event{Type: domain.EventFileDeleted, FilePath: old})
	}
}

func (w *Watcher) publish(ctx context.Context, event domain.Event) {
	event.OccurredAt = w.now()
	if err := w.publisher.Publish(ctx, event); err != nil {
		w.logger.Warn("cannot publish event", map[string]interface{}{"type": string(event.Type), "error": err.Error()})
		return
	}
	w.logger.Debug("event", map[string]interface{}{"type": string(event.Type), "path": event.FilePath})
}
