package services

import (
	"context"
	"sync"
	"time"
)

type RateLimiter interface {
	Allow(ctx context.Context, clientID string) (bool, error)
}

// SlidingWindowLimiter admits at most limit requests per client within any
// window-long interval.
type SlidingWindowLimiter struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
	limit   int
	window  time.Duration
}

func NewSlidingWindowLimiter(limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		buckets: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
	}
}

func (l *SlidingWindowLimiter) Allow(_ context.Context, clientID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	hits := l.prune(l.buckets[clientID], now)
	if len(hits) >= l.limit {
		l.buckets[clientID] = hits
		return false, nil
	}

	l.buckets[clientID] = append(hits, now)
	return true, nil
}

// Sweep drops clients with no requests inside the current window and returns
// how many were removed.
func (l *SlidingWindowLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, hits := range l.buckets {
		hits = l.prune(hits, now)
		if len(hits) == 0 {
			delete(l.buckets, id)
			removed++
			continue
		}
		l.buckets[id] = hits
	}
	return removed
}

func (l *SlidingWindowLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// prune keeps timestamps newer than now-window. Hits are appended in order so
// the first one still inside the window marks the cut.
func (l *SlidingWindowLimiter) prune(hits []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return hits
	}
	return append(hits[:0:0], hits[i:]...)
}
