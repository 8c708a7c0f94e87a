package site

import (
	"context"
	"testing"
	"time"
)

func TestContentHashHex(t *testing.T) {
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if got := ContentHashHex([]byte("hello world")); got != want {
		t.Errorf("expected hash %q, got %q", want, got)
	}
	if ContentHashHex([]byte("aaa")) == ContentHashHex([]byte("bbb")) {
		t.Error("expected different hashes for different inputs")
	}
}

func TestBuild_StateTransitions(t *testing.T) {
	b := NewBuild()
	if b.ID == "" || b.Status != StatusQueued {
		t.Fatalf("unexpected new build: %+v", b.Snapshot())
	}

	transitions := []struct {
		status BuildStatus
		phase  string
	}{
		{StatusLoading, "loading"},
		{StatusRendering, "rendering"},
		{StatusCompleted, "done"},
	}
	for _, tr := range transitions {
		before := b.UpdatedAt
		time.Sleep(time.Millisecond)
		b.SetStatus(tr.status, tr.phase)
		if b.Status != tr.status || b.Phase != tr.phase {
			t.Errorf("expected %q/%q, got %q/%q", tr.status, tr.phase, b.Status, b.Phase)
		}
		if !b.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
	if !b.Status.Done() || StatusRendering.Done() {
		t.Error("unexpected Done result")
	}
}

func TestBuild_SnapshotCopiesErrors(t *testing.T) {
	b := NewBuild()
	snap := b.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("snapshot errors should be an empty slice, not nil")
	}

	b.SetTotalPosts(3)
	b.IncrPostsRendered()
	b.AddWarnings(2)
	b.AddError("posts/a.md: boom")
	snap = b.Snapshot()
	if snap.Progress.TotalPosts != 3 || snap.Progress.PostsRendered != 1 || snap.Progress.Warnings != 2 {
		t.Errorf("unexpected progress: %+v", snap.Progress)
	}
	b.AddError("second")
	if len(snap.Progress.Errors) != 1 {
		t.Errorf("snapshot should not see later errors, got %v", snap.Progress.Errors)
	}
	if !b.HasErrors() {
		t.Error("expected HasErrors")
	}
}

func TestBuildStore_ListAndCleanup(t *testing.T) {
	store := NewBuildStore(30 * time.Second)
	old := NewBuild()
	old.CreatedAt = old.CreatedAt.Add(-time.Minute)
	old.UpdatedAt = old.UpdatedAt.Add(-time.Minute)
	fresh := NewBuild()
	store.Put(old)
	store.Put(fresh)

	list := store.List()
	if len(list) != 2 || list[0].ID != fresh.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}

	store.Cleanup()
	if store.Get(old.ID) != nil {
		t.Error("expired build should be evicted")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("fresh build should be kept")
	}
}

func TestBuildStore_RunStopsOnCancel(t *testing.T) {
	store := NewBuildStore(time.Millisecond)
	b := NewBuild()
	store.Put(b)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for store.Get(b.ID) != nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if store.Get(b.ID) != nil {
		t.Error("janitor did not evict the expired build")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
