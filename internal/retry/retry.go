package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/amishk599/liveroles/internal/model"
)

// maxRetryAfter caps a server-provided Retry-After.
const maxRetryAfter = 30 * time.Second

// Policy controls how many times an operation is retried and how long to wait.
type Policy struct {
	MaxRetries int           // additional attempts after the first failure
	BaseDelay  time.Duration // delay before the first retry, doubled on each subsequent retry
}

// DefaultPolicy retries twice with a short base delay.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: 2, BaseDelay: 250 * time.Millisecond}
}

// Do runs fn, retrying failed attempts with exponential backoff and jitter.
// Every failure is retried except when ctx itself is done; the per-attempt
// timeout lives in fn, so an attempt that timed out is retried like any other.
func Do[T any](ctx context.Context, p Policy, logger *slog.Logger, op string, fn func(context.Context) (T, error)) (T, error) {
	result, err := fn(ctx)
	if err == nil {
		return result, nil
	}

	lastErr := err
	for attempt := 1; attempt <= p.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			break
		}

		delay := p.backoffDelay(attempt, lastErr)
		logger.Debug("retrying after error",
			"op", op,
			"attempt", attempt,
			"max_retries", p.MaxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			var zero T
			return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		result, err = fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}

	var zero T
	return zero, lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// If the error includes a Retry-After duration (HTTP 429/503), that takes precedence.
func (p Policy) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return min(httpErr.RetryAfter, maxRetryAfter)
	}

	// Exponential: baseDelay * 2^(attempt-1)
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}
