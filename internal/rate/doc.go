// Package rate implements the Redis-backed fixed-window limiter that throttles the
// HTTP issue and refresh endpoints per client.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefixes:
//   - gt:ri: issue per client
//   - gt:rr: refresh per client
//
// # What this package must NOT do
//
//   - Throttle Verify. Verification stays I/O free.
//   - Be imported by the core token package.
package rate
