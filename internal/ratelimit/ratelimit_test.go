package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAllowExhaustsQuota(t *testing.T) {
	t.Parallel()

	current := time.Unix(1700000000, 0)
	l := newLimiter(5, time.Hour, func() time.Time { return current })

	for i := 0; i < 5; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("Allow call %d = false, want true", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("6th Allow = true, want false")
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("7th Allow = true, want false")
	}
}

func TestAllowResetsAfterWindow(t *testing.T) {
	t.Parallel()

	current := time.Unix(1700000000, 0)
	l := newLimiter(5, time.Hour, func() time.Time { return current })

	for i := 0; i < 5; i++ {
		l.Allow("client")
	}
	if l.Allow("client") {
		t.Fatal("Allow over quota = true, want false")
	}

	current = current.Add(time.Hour + time.Second)
	if !l.Allow("client") {
		t.Fatal("Allow after window rollover = false, want true")
	}
	if got := l.Remaining("client"); got != 4 {
		t.Fatalf("Remaining after rollover = %d, want 4", got)
	}
}

func TestClientKeysAreIndependent(t *testing.T) {
	t.Parallel()

	current := time.Unix(1700000000, 0)
	l := newLimiter(1, time.Hour, func() time.Time { return current })

	if !l.Allow("a") {
		t.Fatal("Allow(a) = false, want true")
	}
	if l.Allow("a") {
		t.Fatal("second Allow(a) = true, want false")
	}
	if !l.Allow("b") {
		t.Fatal("Allow(b) = false, want true")
	}
}

func TestRemaining(t *testing.T) {
	t.Parallel()

	current := time.Unix(1700000000, 0)
	l := newLimiter(5, time.Hour, func() time.Time { return current })

	if got := l.Remaining("client"); got != 5 {
		t.Fatalf("Remaining before any request = %d, want 5", got)
	}
	l.Allow("client")
	l.Allow("client")
	if got := l.Remaining("client"); got != 3 {
		t.Fatalf("Remaining after 2 requests = %d, want 3", got)
	}
	for i := 0; i < 10; i++ {
		l.Allow("client")
	}
	if got := l.Remaining("client"); got != 0 {
		t.Fatalf("Remaining past quota = %d, want 0", got)
	}
}

func TestResetAt(t *testing.T) {
	t.Parallel()

	current := time.Unix(1700000000, 0)
	l := newLimiter(5, time.Hour, func() time.Time { return current })

	if got := l.ResetAt("client"); !got.Equal(current) {
		t.Fatalf("ResetAt with no window = %v, want %v", got, current)
	}

	l.Allow("client")
	want := current.Add(time.Hour)
	if got := l.ResetAt("client"); !got.Equal(want) {
		t.Fatalf("ResetAt = %v, want %v", got, want)
	}

	current = current.Add(2 * time.Hour)
	if got := l.ResetAt("client"); !got.Equal(current) {
		t.Fatalf("ResetAt after expiry = %v, want %v", got, current)
	}
}

func TestConcurrentAllowAdmitsExactlyQuota(t *testing.T) {
	t.Parallel()

	fixed := time.Unix(1700000000, 0)
	l := newLimiter(5, time.Hour, func() time.Time { return fixed })

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared") {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := admitted.Load(); got != 5 {
		t.Fatalf("admitted %d concurrent requests, want exactly 5", got)
	}
}

func TestEvictStale(t *testing.T) {
	t.Parallel()

	current := time.Unix(1700000000, 0)
	l := newLimiter(5, time.Hour, func() time.Time { return current })

	l.Allow("old")
	current = current.Add(90 * time.Minute)
	l.Allow("fresh")

	current = current.Add(45 * time.Minute)
	l.evictStale()

	l.mu.Lock()
	_, oldKept := l.clients["old"]
	_, freshKept := l.clients["fresh"]
	l.mu.Unlock()

	if oldKept {
		t.Fatal("stale entry survived eviction")
	}
	if !freshKept {
		t.Fatal("entry with recent window was evicted")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	t.Parallel()

	l := NewLimiter(5, time.Hour)
	l.Stop()
	l.Stop()
}
