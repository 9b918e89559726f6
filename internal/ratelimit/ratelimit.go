package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ProviderLimiter enforces a minimum gap between consecutive requests to the
// same provider. It is a courtesy delay, not a throughput budget: each
// provider gets a limiter with burst 1 that refills once per minDelay.
type ProviderLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter // key: provider name
	minDelay time.Duration
}

// NewProviderLimiter creates a limiter enforcing minDelay between requests to
// the same provider. A zero minDelay disables waiting.
func NewProviderLimiter(minDelay time.Duration) *ProviderLimiter {
	return &ProviderLimiter{
		limiters: make(map[string]*rate.Limiter),
		minDelay: minDelay,
	}
}

// Wait blocks until the provider may be called again.
// Returns an error if the context is cancelled while waiting.
func (l *ProviderLimiter) Wait(ctx context.Context, provider string) error {
	if l == nil || l.minDelay <= 0 {
		return nil
	}
	if err := l.limiterFor(provider).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", provider, err)
	}
	return nil
}

func (l *ProviderLimiter) limiterFor(provider string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[provider]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.minDelay), 1)
		l.limiters[provider] = lim
	}
	return lim
}
