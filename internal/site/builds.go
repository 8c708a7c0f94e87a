package site

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgallion1/scholarsite/internal/content"
	"github.com/google/uuid"
)

// BuildStatus represents the state of a site build.
type BuildStatus string

const (
	StatusQueued    BuildStatus = "queued"
	StatusLoading   BuildStatus = "loading"
	StatusRendering BuildStatus = "rendering"
	StatusCompleted BuildStatus = "completed"
	StatusFailed    BuildStatus = "failed"
	StatusPartial   BuildStatus = "partial"
)

// Done reports whether the status is terminal.
func (s BuildStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusPartial
}

// Build tracks the state of a single site build.
type Build struct {
	mu sync.Mutex

	ID       string      `json:"build_id"`
	Status   BuildStatus `json:"status"`
	Phase    string      `json:"phase"`
	Progress Progress    `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	errors []string
}

// Progress tracks rendering progress.
type Progress struct {
	TotalPosts    int      `json:"total_posts"`
	PostsRendered int      `json:"posts_rendered"`
	Warnings      int      `json:"warnings"`
	Errors        []string `json:"errors"`
}

// NewBuild returns a queued build with a fresh ID.
func NewBuild() *Build {
	now := time.Now()
	return &Build{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BuildStore is a thread-safe in-memory build registry with TTL eviction.
type BuildStore struct {
	mu     sync.Mutex
	builds map[string]*Build
	ttl    time.Duration
}

func NewBuildStore(ttl time.Duration) *BuildStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &BuildStore{
		builds: make(map[string]*Build),
		ttl:    ttl,
	}
}

func (s *BuildStore) Put(b *Build) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builds[b.ID] = b
}

func (s *BuildStore) Get(id string) *Build {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builds[id]
}

// List returns snapshots of all builds, newest first.
func (s *BuildStore) List() []BuildSnapshot {
	s.mu.Lock()
	builds := make([]*Build, 0, len(s.builds))
	for _, b := range s.builds {
		builds = append(builds, b)
	}
	s.mu.Unlock()

	out := make([]BuildSnapshot, 0, len(builds))
	for _, b := range builds {
		out = append(out, b.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Cleanup removes expired builds.
func (s *BuildStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, b := range s.builds {
		b.mu.Lock()
		expired := now.Sub(b.UpdatedAt) > s.ttl
		b.mu.Unlock()
		if expired {
			delete(s.builds, id)
		}
	}
}

// Run evicts expired builds every interval until ctx is done.
func (s *BuildStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

// SetStatus updates build status atomically.
func (b *Build) SetStatus(status BuildStatus, phase string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Status = status
	b.Phase = phase
	b.UpdatedAt = time.Now()
}

// AddError records an error.
func (b *Build) AddError(err string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errors = append(b.errors, err)
	b.Progress.Errors = b.errors
	b.UpdatedAt = time.Now()
}

// HasErrors reports whether any error was recorded.
func (b *Build) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.errors) > 0
}

// IncrPostsRendered atomically increments posts rendered.
func (b *Build) IncrPostsRendered() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Progress.PostsRendered++
	b.UpdatedAt = time.Now()
}

// AddWarnings records broken references and chart errors.
func (b *Build) AddWarnings(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Progress.Warnings += n
	b.UpdatedAt = time.Now()
}

// SetTotalPosts records total post count.
func (b *Build) SetTotalPosts(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Progress.TotalPosts = n
	b.UpdatedAt = time.Now()
}

// SetContentHash records the hash of the loaded content.
func (b *Build) SetContentHash(h string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ContentHash = h
}

// BuildSnapshot is a read-only, JSON-safe copy of build state.
type BuildSnapshot struct {
	ID          string      `json:"build_id"`
	Status      BuildStatus `json:"status"`
	Phase       string      `json:"phase"`
	Progress    Progress    `json:"progress"`
	ContentHash string      `json:"content_hash,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the build state.
func (b *Build) Snapshot() BuildSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	errs := append([]string{}, b.Progress.Errors...)
	return BuildSnapshot{
		ID:     b.ID,
		Status: b.Status,
		Phase:  b.Phase,
		Progress: Progress{
			TotalPosts:    b.Progress.TotalPosts,
			PostsRendered: b.Progress.PostsRendered,
			Warnings:      b.Progress.Warnings,
			Errors:        errs,
		},
		ContentHash: b.ContentHash,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of data and returns the hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

// contentHash hashes everything a build reads, so identical trees give
// identical hashes.
func contentHash(c *content.Content) string {
	var buf bytes.Buffer
	data, _ := json.Marshal(struct {
		Site         content.Site
		Publications []content.Publication
		News         []content.NewsItem
		Assets       []string
	}{c.Site, c.Publications, c.News, c.Assets})
	buf.Write(data)
	buf.Write(c.About)
	for _, p := range c.Posts {
		buf.WriteString(p.Path)
		buf.Write(p.Source)
	}
	return ContentHashHex(buf.Bytes())
}
