package client

import (
	"context"
	"time"

	"github.com/xavierca1/ligue-crm/internal/apperr"
)

// RetryPolicy is capped exponential backoff: baseDelay doubles per attempt
// up to maxDelay. Only retryable errors (network, 5xx, 429) are retried;
// validation and auth failures surface immediately.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

type retryPolicy RetryPolicy

var defaultRetry = retryPolicy{
	MaxAttempts: 3,
	BaseDelay:   time.Second,
	MaxDelay:    8 * time.Second,
}

func (p retryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(p.delay(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err = fn()
		if err == nil {
			return nil
		}
		if !apperr.Retryable(err) {
			return err
		}
	}
	return err
}

func (p retryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}
