//go:build integration
// +build integration

package test

import (
	"testing"
	"time"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/internal/rate"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var integrationKey = []byte("integration-signing-key-0123456789abcdef")

func newIntegrationLimiter(t *testing.T, cfg rate.Config) (*rate.Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return rate.New(rdb, cfg), mr
}

func newIntegrationService(t *testing.T) *goToken.Service {
	t.Helper()

	svc, err := goToken.New().
		WithSigningKey(integrationKey).
		WithValidityDuration(time.Hour).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc
}
