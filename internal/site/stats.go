package site

import (
	"slices"
	"sync"
	"time"
)

// RenderSample is one post render.
type RenderSample struct {
	Slug     string
	Passes   int
	Duration time.Duration
	Failed   bool

	at time.Time
}

// StatsSnapshot aggregates the post renders inside the stats window.
type StatsSnapshot struct {
	Renders   int     `json:"renders"`
	Failed    int     `json:"failed"`
	AvgPasses float64 `json:"avg_passes"`
	MinMs     int64   `json:"min_ms"`
	MaxMs     int64   `json:"max_ms"`
	AvgMs     float64 `json:"avg_ms"`
	P50Ms     float64 `json:"p50_ms"`
	P95Ms     float64 `json:"p95_ms"`
	P99Ms     float64 `json:"p99_ms"`
	Slowest   string  `json:"slowest,omitempty"` // slug of the slowest render
}

// RenderStats keeps post renders from the last window for the stats API.
type RenderStats struct {
	mu      sync.Mutex
	window  time.Duration
	samples []RenderSample
	now     func() time.Time
}

func NewRenderStats(window time.Duration) *RenderStats {
	if window <= 0 {
		window = time.Hour
	}
	return &RenderStats{window: window, now: time.Now}
}

// Record adds one render. Negative durations count as zero.
func (s *RenderStats) Record(rs RenderSample) {
	if rs.Duration < 0 {
		rs.Duration = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rs.at = s.now()
	s.expireLocked(rs.at)
	s.samples = append(s.samples, rs)
}

func (s *RenderStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(s.now())

	var snap StatsSnapshot
	if len(s.samples) == 0 {
		return snap
	}
	ms := make([]int64, len(s.samples))
	var total time.Duration
	var passes int
	slowest := s.samples[0]
	for i, rs := range s.samples {
		ms[i] = rs.Duration.Milliseconds()
		total += rs.Duration
		passes += rs.Passes
		if rs.Failed {
			snap.Failed++
		}
		if rs.Duration > slowest.Duration {
			slowest = rs
		}
	}
	slices.Sort(ms)

	n := len(ms)
	snap.Renders = n
	snap.AvgPasses = float64(passes) / float64(n)
	snap.MinMs = ms[0]
	snap.MaxMs = ms[n-1]
	snap.AvgMs = float64(total.Milliseconds()) / float64(n)
	snap.P50Ms = percentile(ms, 50)
	snap.P95Ms = percentile(ms, 95)
	snap.P99Ms = percentile(ms, 99)
	snap.Slowest = slowest.Slug
	return snap
}

// expireLocked drops samples older than the window. Samples are appended
// in time order so the expired ones form a prefix.
func (s *RenderStats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.samples) && s.samples[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		s.samples = slices.Delete(s.samples, 0, i)
	}
}

// percentile interpolates linearly between closest ranks of sorted.
func percentile(sorted []int64, p float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case p <= 0 || n == 1:
		return float64(sorted[0])
	case p >= 100:
		return float64(sorted[n-1])
	}
	rank := float64(n-1) * p / 100
	i := int(rank)
	frac := rank - float64(i)
	return float64(sorted[i]) + frac*float64(sorted[i+1]-sorted[i])
}
