// Package watch reports changes under a content directory, debounced so a
// burst of editor writes triggers a single rebuild.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeFunc receives the paths that changed since the last call.
type ChangeFunc func(ctx context.Context, paths []string)

// Watcher watches a directory tree. New subdirectories are added as they
// appear.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange ChangeFunc
	log      *slog.Logger
	fsw      *fsnotify.Watcher
}

// New creates a Watcher over root and every directory below it. Run must
// be called to deliver events and release the watcher.
func New(root string, debounce time.Duration, onChange ChangeFunc, log *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	if log == nil {
		log = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		root:     root,
		debounce: debounce,
		onChange: onChange,
		log:      log,
		fsw:      fsw,
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and its subdirectories, skipping hidden ones.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && hidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		w.log.Debug("watching directory", "path", p)
		return nil
	})
}

// Run delivers debounced changes until ctx is done, then closes the
// underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.log.Warn("watching new directory", "path", event.Name, "error", err)
					}
				}
			}
			w.log.Debug("content changed", "path", event.Name, "op", event.Op.String())
			pending[event.Name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			w.onChange(ctx, paths)
		}
	}
}

// relevant drops chmod-only events and editor scratch files.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Base(event.Name)
	if hidden(name) || strings.HasSuffix(name, "~") || strings.HasSuffix(name, ".swp") {
		return false
	}
	return true
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "#")
}
