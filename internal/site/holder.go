package site

import (
	"context"
	"sync"
	"sync/atomic"
)

// Holder keeps the site currently being served. Readers never block;
// a failed rebuild leaves the previous site in place.
type Holder struct {
	current atomic.Pointer[Site]
	mu      sync.Mutex // serializes rebuilds
}

// Load returns the current site, or nil before the first build.
func (h *Holder) Load() *Site {
	return h.current.Load()
}

// Store replaces the current site.
func (h *Holder) Store(s *Site) {
	h.current.Store(s)
}

// Rebuild runs one build and swaps it in on success.
func (h *Holder) Rebuild(ctx context.Context, b *Builder) (*Site, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}
	h.current.Store(s)
	return s, nil
}
