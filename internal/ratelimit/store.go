package ratelimit

import (
	"context"
	"time"
)

// CounterStore is the seam for a shared atomic counter backend. Incr must be
// atomic: create-or-reset the window and bump the count in one operation.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

// StoreLimiter backs the fixed-window algorithm with a shared store, so
// multiple server instances see one counter per identifier. Call sites are
// identical to MemoryLimiter.
type StoreLimiter struct {
	store CounterStore
}

func NewStoreLimiter(store CounterStore) *StoreLimiter {
	return &StoreLimiter{store: store}
}

func (l *StoreLimiter) Check(ctx context.Context, identifier string, cfg Config) (Result, error) {
	count, resetAt, err := l.store.Incr(ctx, identifier, time.Duration(cfg.WindowSeconds)*time.Second)
	if err != nil {
		return Result{}, err
	}

	remaining := cfg.MaxRequests - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   count <= cfg.MaxRequests,
		Limit:     cfg.MaxRequests,
		Remaining: remaining,
		Reset:     resetAt.Unix(),
	}, nil
}
