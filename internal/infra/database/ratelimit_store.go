package database

import (
	"context"
	"database/sql"
	"time"
)

// RateLimitStore backs ratelimit.StoreLimiter with a shared Postgres
// counter, so every server instance sees the same window per identifier.
type RateLimitStore struct {
	DB *sql.DB
}

func NewRateLimitStore(db *sql.DB) *RateLimitStore {
	return &RateLimitStore{DB: db}
}

// Incr creates-or-resets the window and bumps the counter in a single
// statement, which keeps the increment atomic under concurrent requests.
func (s *RateLimitStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	query := `
		INSERT INTO rate_limits (identifier, count, reset_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (identifier) DO UPDATE SET
			count    = CASE WHEN rate_limits.reset_at < NOW() THEN 1 ELSE rate_limits.count + 1 END,
			reset_at = CASE WHEN rate_limits.reset_at < NOW() THEN EXCLUDED.reset_at ELSE rate_limits.reset_at END
		RETURNING count, reset_at
	`

	var count int
	var resetAt time.Time
	err := s.DB.QueryRowContext(ctx, query, key, time.Now().Add(window)).Scan(&count, &resetAt)
	if err != nil {
		return 0, time.Time{}, err
	}
	return count, resetAt, nil
}

// Sweep evicts expired windows; call it from a ticker to bound table growth.
func (s *RateLimitStore) Sweep(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM rate_limits WHERE reset_at < NOW()`)
	return err
}
