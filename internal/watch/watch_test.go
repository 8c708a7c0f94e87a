package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/goleak"
)

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startWatcher(t *testing.T, dir string) (<-chan []string, func()) {
	t.Helper()
	changes := make(chan []string, 16)
	w, err := New(dir, 100*time.Millisecond, func(_ context.Context, paths []string) {
		changes <- paths
	}, quietLog)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	return changes, func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	}
}

func waitChange(t *testing.T, changes <-chan []string) []string {
	t.Helper()
	select {
	case paths := <-changes:
		return paths
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
		return nil
	}
}

func write(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	changes, stop := startWatcher(t, dir)
	defer stop()

	for _, name := range []string{"a.md", "b.md", "c.md"} {
		write(t, filepath.Join(dir, name), "x")
	}
	paths := waitChange(t, changes)
	for _, name := range []string{"a.md", "b.md", "c.md"} {
		if !slices.Contains(paths, filepath.Join(dir, name)) {
			t.Errorf("expected %s in %v", name, paths)
		}
	}
	if !slices.IsSorted(paths) {
		t.Errorf("paths should be sorted: %v", paths)
	}
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	changes, stop := startWatcher(t, dir)
	defer stop()

	sub := filepath.Join(dir, "posts")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	waitChange(t, changes)

	target := filepath.Join(sub, "new.md")
	write(t, target, "hello")
	deadline := time.After(5 * time.Second)
	for {
		select {
		case paths := <-changes:
			if slices.Contains(paths, target) {
				return
			}
		case <-deadline:
			t.Fatal("write inside new subdirectory was not reported")
		}
	}
}

func TestWatcher_IgnoresScratchFiles(t *testing.T) {
	dir := t.TempDir()
	changes, stop := startWatcher(t, dir)
	defer stop()

	write(t, filepath.Join(dir, ".post.md.swp"), "x")
	write(t, filepath.Join(dir, "post.md~"), "x")
	write(t, filepath.Join(dir, "post.md"), "x")

	paths := waitChange(t, changes)
	if len(paths) != 1 || paths[0] != filepath.Join(dir, "post.md") {
		t.Errorf("expected only post.md, got %v", paths)
	}
}

func TestWatcher_SkipsHiddenDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".git", "objects"), 0o755); err != nil {
		t.Fatal(err)
	}
	w, err := New(dir, 0, func(context.Context, []string) {}, quietLog)
	if err != nil {
		t.Fatal(err)
	}
	defer w.fsw.Close()
	watched := w.fsw.WatchList()
	if len(watched) != 1 || watched[0] != dir {
		t.Errorf("expected only the root to be watched, got %v", watched)
	}
}

func TestRelevant(t *testing.T) {
	w := &Watcher{}
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "/c/post.md", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/c/post.md", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/c/post.md", Op: fsnotify.Write | fsnotify.Chmod}, true},
		{fsnotify.Event{Name: "/c/#post.md#", Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: "/c/4913", Op: fsnotify.Create}, true},
	}
	for _, tt := range tests {
		if got := w.relevant(tt.event); got != tt.want {
			t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
		}
	}
}

func TestNew_MissingRoot(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing"), 0, nil, quietLog); err == nil {
		t.Fatal("expected error for missing root")
	}
}
