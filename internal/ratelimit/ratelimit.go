// Package ratelimit admits requests per client key within a fixed window.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks per-client admission counts over a fixed window. All
// methods are safe for concurrent use; the check and increment in Allow
// share one critical section so two callers can never both take the last
// slot.
type Limiter struct {
	quota  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*windowCount

	stop     chan struct{}
	stopOnce sync.Once
}

type windowCount struct {
	count       int
	windowStart time.Time
}

// NewLimiter returns a limiter admitting quota requests per window for each
// client key. A janitor goroutine evicts stale entries until Stop is called.
func NewLimiter(quota int, window time.Duration) *Limiter {
	l := newLimiter(quota, window, time.Now)
	go l.janitor()
	return l
}

// newLimiter builds a limiter without the janitor; tests drive eviction
// directly and substitute the clock.
func newLimiter(quota int, window time.Duration, now func() time.Time) *Limiter {
	return &Limiter{
		quota:   quota,
		window:  window,
		now:     now,
		clients: make(map[string]*windowCount),
		stop:    make(chan struct{}),
	}
}

// Allow admits one request for key if quota remains in the active window,
// consuming a slot. Once the quota is exhausted it returns false without
// further state changes until the window rolls over.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	wc := l.clients[key]
	if wc == nil || now.Sub(wc.windowStart) >= l.window {
		wc = &windowCount{windowStart: now}
		l.clients[key] = wc
	}
	if wc.count >= l.quota {
		return false
	}
	wc.count++
	return true
}

// Remaining reports how many admissions key has left in its active window.
// It never consumes quota.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	wc := l.clients[key]
	if wc == nil || l.now().Sub(wc.windowStart) >= l.window {
		return l.quota
	}
	if left := l.quota - wc.count; left > 0 {
		return left
	}
	return 0
}

// ResetAt reports when key's active window rolls over. A key with no active
// window resets now: its next request starts a fresh window.
func (l *Limiter) ResetAt(key string) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	wc := l.clients[key]
	if wc == nil || now.Sub(wc.windowStart) >= l.window {
		return now
	}
	return wc.windowStart.Add(l.window)
}

// Stop terminates the janitor goroutine. The limiter itself stays usable.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) janitor() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.evictStale()
		}
	}
}

// evictStale drops entries whose window expired at least one full window
// ago. Eviction bounds memory; correctness never depends on it because
// Allow resets expired windows lazily.
func (l *Limiter) evictStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-2 * l.window)
	for key, wc := range l.clients {
		if wc.windowStart.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}
