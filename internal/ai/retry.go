package ai

import (
	"context"
	"time"
)

// RetryPolicy describes how many attempts a request gets and how long to
// wait before each retry. Backoff receives the 1-based index of the
// attempt that just failed.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

// DefaultRetryPolicy allows two retries after the initial attempt with
// linear backoff: 1s before the first retry, 2s before the second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * time.Second
		},
	}
}

// sleepFunc waits for d or until ctx is done. Injectable so retry
// schedules are testable without real delays.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retry runs fn until it succeeds, fails with a non-retryable
// classification, or exhausts the attempt budget. The last classified
// error is surfaced.
func retry(ctx context.Context, policy RetryPolicy, sleep sleepFunc, fn func(attempt int) (string, error)) (string, error) {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		out, err := fn(attempt)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !KindOf(err).Retryable() || attempt == policy.MaxAttempts {
			break
		}
		if policy.Backoff != nil {
			if err := sleep(ctx, policy.Backoff(attempt)); err != nil {
				break
			}
		}
	}
	return "", lastErr
}
