// Package middleware exposes net/http adapters that authenticate requests with a
// bearer token verified by goToken.Service.
//
// # Guards
//
//   - [Guard] verifies the Authorization bearer token and stores the claims in the
//     request context.
//   - [RequireClaim] rejects requests whose verified claims lack a given value.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to the verifier).
//   - Tell clients why a token was rejected. Every failure is a plain 401.
package middleware
