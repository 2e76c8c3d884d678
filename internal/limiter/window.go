package limiter

import (
	"context"
	"sync"
	"time"
)

// Window is an in-memory fixed-window limiter.
type Window struct {
	window time.Duration
	limit  int
	now    func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	start time.Time
	count int
}

var _ Limiter = (*Window)(nil)

// NewWindow allows at most limit requests per key in every window.
func NewWindow(window time.Duration, limit int) *Window {
	return &Window{window: window, limit: limit, now: time.Now, buckets: map[string]*bucket{}}
}

// Allow counts a request against key.
func (l *Window) Allow(_ context.Context, key []byte) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[string(key)]
	if !ok || now.Sub(b.start) >= l.window {
		b = &bucket{start: now}
		l.buckets[string(key)] = b
	}
	if b.count >= l.limit {
		return false, b.start.Add(l.window).Sub(now), nil
	}
	b.count++
	return true, 0, nil
}

// sweep drops expired buckets at most once per window.
func (l *Window) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for k, b := range l.buckets {
		if now.Sub(b.start) >= l.window {
			delete(l.buckets, k)
		}
	}
}
