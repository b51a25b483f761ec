package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/amishk599/jobby/internal/model"
)

func TestWait_SameKind_EnforcesMinDelay(t *testing.T) {
	limiter := NewKindRateLimiter(100 * time.Millisecond)
	ctx := context.Background()

	// First call should return immediately.
	if err := limiter.Wait(ctx, "adp"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "adp"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Should have waited at least ~100ms (allow 80ms for timer jitter).
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentKind_NoCrossBlocking(t *testing.T) {
	limiter := NewKindRateLimiter(200 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "adp"); err != nil {
		t.Fatalf("adp wait: %v", err)
	}

	// Immediately call for raw; this should not block.
	start := time.Now()
	if err := limiter.Wait(ctx, "raw"); err != nil {
		t.Fatalf("raw wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected raw wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_ConcurrentCallersGetSeparateSlots(t *testing.T) {
	limiter := NewKindRateLimiter(60 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Wait(ctx, "adp"); err != nil {
				t.Errorf("wait: %v", err)
			}
		}()
	}
	wg.Wait()

	// Three callers: 0ms, 60ms, 120ms.
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("expected >= 100ms for three callers, got %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewKindRateLimiter(5 * time.Second) // long delay
	ctx := context.Background()

	// First call to seed the last-call time.
	if err := limiter.Wait(ctx, "adp"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	if err := limiter.Wait(ctx, "adp"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}

// --- Mock for RateLimitedProvider test ---

type recordingProvider struct {
	called bool
}

func (p *recordingProvider) Kind() string { return "adp" }
func (p *recordingProvider) Name() string { return "c1" }

func (p *recordingProvider) FetchJobs(_ context.Context) ([]model.Record, error) {
	p.called = true
	return nil, nil
}

func TestRateLimitedProvider_WaitsBeforeDelegating(t *testing.T) {
	limiter := NewKindRateLimiter(100 * time.Millisecond)
	inner := &recordingProvider{}
	p := NewRateLimitedProvider(inner, limiter)
	ctx := context.Background()

	if p.Kind() != "adp" || p.Name() != "c1" {
		t.Errorf("Kind/Name = %s/%s, want passthrough", p.Kind(), p.Name())
	}

	// First call seeds limiter, then delegates.
	if _, err := p.FetchJobs(ctx); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if !inner.called {
		t.Fatal("inner provider was not called on first fetch")
	}

	inner.called = false

	// Second call should wait for the rate limiter.
	start := time.Now()
	if _, err := p.FetchJobs(ctx); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	elapsed := time.Since(start)

	if !inner.called {
		t.Fatal("inner provider was not called on second fetch")
	}
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait on second fetch, got %v", elapsed)
	}
}
