package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Op names a throttled operation.
type Op string

const (
	OpIssue   Op = "issue"
	OpRefresh Op = "refresh"
)

// Config holds rate limiter tuning parameters. A zero limit disables throttling for
// that operation.
type Config struct {
	IssueLimit    int
	IssueWindow   time.Duration
	RefreshLimit  int
	RefreshWindow time.Duration
}

// DefaultConfig allows 60 refreshes and 600 issues per client per minute.
func DefaultConfig() Config {
	return Config{
		IssueLimit:    600,
		IssueWindow:   time.Minute,
		RefreshLimit:  60,
		RefreshWindow: time.Minute,
	}
}

// Validate rejects a positive limit paired with a non-positive window.
func (c Config) Validate() error {
	if c.IssueLimit < 0 || c.RefreshLimit < 0 {
		return errors.New("rate limits must be >= 0")
	}
	if c.IssueLimit > 0 && c.IssueWindow <= 0 {
		return errors.New("issue window must be > 0 when issue limit is set")
	}
	if c.RefreshLimit > 0 && c.RefreshWindow <= 0 {
		return errors.New("refresh window must be > 0 when refresh limit is set")
	}
	return nil
}

// Limiter enforces per-client issue and refresh limits using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Allow counts one attempt of op for client and returns ErrRateLimited once the
// window budget is exceeded. The attempt is counted even when rejected, so a client
// hammering the endpoint stays limited until the window expires.
func (l *Limiter) Allow(ctx context.Context, op Op, client string) error {
	limit, window := l.policy(op)
	if limit <= 0 {
		return nil
	}

	count, err := l.incrementWithTTL(ctx, counterKey(op, client), window)
	if err != nil {
		return err
	}
	if count > int64(limit) {
		return ErrRateLimited
	}
	return nil
}

// Attempts returns the current counter for op and client. Missing keys return zero.
func (l *Limiter) Attempts(ctx context.Context, op Op, client string) (int, error) {
	count, err := l.redis.Get(ctx, counterKey(op, client)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

// Reset clears the counter for op and client.
func (l *Limiter) Reset(ctx context.Context, op Op, client string) error {
	if err := l.redis.Del(ctx, counterKey(op, client)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// RetryAfter returns how long until the current window for op and client ends. It falls
// back to the full window when the key has no TTL or Redis cannot answer.
func (l *Limiter) RetryAfter(ctx context.Context, op Op, client string) time.Duration {
	_, window := l.policy(op)
	ttl, err := l.redis.PTTL(ctx, counterKey(op, client)).Result()
	if err != nil || ttl <= 0 {
		return window
	}
	return ttl
}

// Ping reports whether the backing Redis answers.
func (l *Limiter) Ping(ctx context.Context) error {
	if err := l.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *Limiter) policy(op Op) (int, time.Duration) {
	switch op {
	case OpIssue:
		return l.config.IssueLimit, l.config.IssueWindow
	case OpRefresh:
		return l.config.RefreshLimit, l.config.RefreshWindow
	default:
		return 0, 0
	}
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func counterKey(op Op, client string) string {
	switch op {
	case OpIssue:
		return "gt:ri:" + client
	default:
		return "gt:rr:" + client
	}
}
