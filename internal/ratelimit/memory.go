package ratelimit

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is the in-process implementation: a mutex-guarded counter
// map with lazy window resets and a periodic sweep to bound memory. Each
// instance owns its own state, so tests can run isolated limiters.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry

	sweepEvery time.Duration
	stop       chan struct{}
	stopOnce   sync.Once

	now func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		entries:    make(map[string]*entry),
		sweepEvery: 5 * time.Minute,
		stop:       make(chan struct{}),
		now:        time.Now,
	}
}

// Start launches the sweep goroutine. Safe to skip in tests.
func (l *MemoryLimiter) Start() {
	go l.sweepLoop()
}

func (l *MemoryLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *MemoryLimiter) Check(_ context.Context, identifier string, cfg Config) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[identifier]
	if !ok || now.After(e.resetAt) {
		e = &entry{resetAt: now.Add(time.Duration(cfg.WindowSeconds) * time.Second)}
		l.entries[identifier] = e
	}
	e.count++

	remaining := cfg.MaxRequests - e.count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   e.count <= cfg.MaxRequests,
		Limit:     cfg.MaxRequests,
		Remaining: remaining,
		Reset:     e.resetAt.Unix(),
	}, nil
}

func (l *MemoryLimiter) sweepLoop() {
	ticker := time.NewTicker(l.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

func (l *MemoryLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, id)
		}
	}
}
