// Package ratelimit implements fixed-window request counting. The window is
// wall-clock based: a burst at the tail of one window plus another right
// after reset can pass, the usual fixed-window tradeoff.
package ratelimit

import "context"

type Config struct {
	MaxRequests   int
	WindowSeconds int
}

type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// Reset is the window end as epoch seconds, for Retry-After math.
	Reset int64
}

// Limiter is the capability the mutation pipeline gates on. Two
// implementations exist: MemoryLimiter (single process) and StoreLimiter
// (shared atomic counter store, for multi-instance deployments).
type Limiter interface {
	Check(ctx context.Context, identifier string, cfg Config) (Result, error)
}

// Presets by operation class.
var (
	Standard = Config{MaxRequests: 100, WindowSeconds: 60}
	Strict   = Config{MaxRequests: 10, WindowSeconds: 60}
	Bulk     = Config{MaxRequests: 5, WindowSeconds: 300}
	Search   = Config{MaxRequests: 30, WindowSeconds: 60}
)

// Identifier picks the counter key: principal id when authenticated, client
// IP otherwise, and a shared anonymous bucket as the last resort.
func Identifier(userID, ip string) string {
	if userID != "" {
		return "user:" + userID
	}
	if ip != "" {
		return "ip:" + ip
	}
	return "anonymous"
}
