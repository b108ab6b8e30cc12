package rate

import "errors"

var (
	// ErrRateLimited is returned once a client has exhausted its window.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps any Redis failure. Callers fail closed on it.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
