//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goToken/internal/rate"
)

func TestRefreshRaceRespectsLimit(t *testing.T) {
	ctx := context.Background()
	const limit = 5
	limiter, _ := newIntegrationLimiter(t, rate.Config{RefreshLimit: limit, RefreshWindow: time.Minute})
	svc := newIntegrationService(t)

	token, err := svc.Issue(map[string]any{"sub": "u1"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			if err := limiter.Allow(ctx, rate.OpRefresh, "10.0.0.1"); err != nil {
				results <- err
				return
			}
			_, err := svc.Refresh(token)
			results <- err
		}()
	}

	close(start)
	wg.Wait()
	close(results)

	success := 0
	for err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, rate.ErrRateLimited):
		default:
			t.Fatalf("unexpected refresh error: %v", err)
		}
	}

	if success != limit {
		t.Fatalf("expected exactly %d refreshes, got %d", limit, success)
	}
}

func TestRefreshLimitWindowResets(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newIntegrationLimiter(t, rate.Config{RefreshLimit: 1, RefreshWindow: time.Minute})

	if err := limiter.Allow(ctx, rate.OpRefresh, "c"); err != nil {
		t.Fatalf("first Allow failed: %v", err)
	}
	if err := limiter.Allow(ctx, rate.OpRefresh, "c"); !errors.Is(err, rate.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	mr.FastForward(time.Minute + time.Second)
	if err := limiter.Allow(ctx, rate.OpRefresh, "c"); err != nil {
		t.Fatalf("Allow after window failed: %v", err)
	}
}
