package ratelimit

import (
	"sync"
	"time"
)

// window is a fixed, non-overlapping counting bucket for one key
type window struct {
	start time.Time
	count int
}

// Limiter is an in-memory fixed-window rate limiter shared by all request
// handlers. State is not persisted: a restart resets every window, which is
// acceptable because the protected operation is throttled upstream by the
// email provider as well.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	size     time.Duration
	limit    int
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a Limiter admitting at most limit requests per key within each
// window of the given size. A janitor goroutine evicts idle windows so the
// map stays bounded under high key cardinality; call Stop to terminate it.
func New(size time.Duration, limit int) *Limiter {
	l := &Limiter{
		windows: make(map[string]*window),
		size:    size,
		limit:   limit,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go l.janitor()

	return l
}

// Stop terminates the janitor goroutine. Safe to call more than once. The
// limiter keeps admitting after Stop; only idle-window eviction ceases.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.stopCh != nil {
			close(l.stopCh)
		}
	})
}

// Admit records an admission attempt for key. It returns true when the
// request is allowed; otherwise false and how long the caller should wait
// before retrying.
func (l *Limiter) Admit(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.size {
		l.windows[key] = &window{start: now, count: 1}
		return true, 0
	}

	if w.count < l.limit {
		w.count++
		return true, 0
	}

	return false, w.start.Add(l.size).Sub(now)
}

// janitor periodically drops windows that have been idle past their size
func (l *Limiter) janitor() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictStale()
		case <-l.stopCh:
			return
		}
	}
}

func (l *Limiter) evictStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.size {
			delete(l.windows, key)
		}
	}
}
