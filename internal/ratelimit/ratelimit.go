package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/jobby/internal/model"
)

// KindRateLimiter enforces a minimum delay between requests to the same
// provider kind, since instances of one kind share an upstream host.
type KindRateLimiter struct {
	mu       sync.Mutex
	next     map[string]time.Time // key: provider kind; earliest time of the next request
	minDelay time.Duration
}

// NewKindRateLimiter creates a rate limiter that enforces minDelay between
// consecutive requests to the same provider kind.
func NewKindRateLimiter(minDelay time.Duration) *KindRateLimiter {
	return &KindRateLimiter{
		next:     make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until the given kind may be requested again. Concurrent
// callers for one kind are handed consecutive slots. Returns an error if
// the context is cancelled while waiting.
func (r *KindRateLimiter) Wait(ctx context.Context, kind string) error {
	r.mu.Lock()
	now := time.Now()
	slot := r.next[kind]
	if slot.Before(now) {
		slot = now
	}
	r.next[kind] = slot.Add(r.minDelay)
	r.mu.Unlock()

	wait := slot.Sub(now)
	if wait <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", kind, ctx.Err())
	case <-time.After(wait):
	}
	return nil
}

var _ model.Provider = (*RateLimitedProvider)(nil)

// RateLimitedProvider is a decorator that waits on a shared limiter before
// delegating to the wrapped Provider.
type RateLimitedProvider struct {
	inner   model.Provider
	limiter *KindRateLimiter
}

// NewRateLimitedProvider wraps p. All providers should share one limiter.
func NewRateLimitedProvider(p model.Provider, limiter *KindRateLimiter) *RateLimitedProvider {
	return &RateLimitedProvider{inner: p, limiter: limiter}
}

func (p *RateLimitedProvider) Kind() string { return p.inner.Kind() }
func (p *RateLimitedProvider) Name() string { return p.inner.Name() }

// FetchJobs waits for the limiter, then delegates to the wrapped provider.
func (p *RateLimitedProvider) FetchJobs(ctx context.Context) ([]model.Record, error) {
	if err := p.limiter.Wait(ctx, p.inner.Kind()); err != nil {
		return nil, err
	}
	return p.inner.FetchJobs(ctx)
}
