package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/kozaktomas/face-finder/internal/constants"
)

// RetryPolicy controls how many times an operation is attempted and how
// long to wait between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

// LinearBackoff returns a backoff function that waits attempt*base
// between attempts (1s, 2s, 3s for base of one second).
func LinearBackoff(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * base
	}
}

// NoBackoff returns a backoff function that never waits. Used in tests.
func NoBackoff() func(int) time.Duration {
	return func(int) time.Duration { return 0 }
}

// DefaultRetryPolicy is the upload retry policy: 3 attempts with
// linearly increasing backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: constants.MaxUploadAttempts,
		Backoff:     LinearBackoff(time.Second),
	}
}

// Do runs op until it succeeds or attempts are exhausted, waiting
// between attempts per the backoff function. It returns the number of
// attempts made and the last error. Context cancellation aborts the
// wait and returns the context error.
func (p RetryPolicy) Do(ctx context.Context, op func() error) (int, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return attempt, nil
		}

		if attempt == attempts {
			break
		}

		wait := p.Backoff(attempt)
		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, fmt.Errorf("retry aborted: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return attempts, lastErr
}
