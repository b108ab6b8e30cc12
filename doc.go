// Package goToken issues, verifies and refreshes signed, time-bounded JWTs carrying
// arbitrary claims.
//
// A [Service] owns one signing key and an immutable [Config] (algorithm, validity
// duration). It exposes three operations:
//
//   - [Service.Issue] signs the caller's claims plus service-computed iat/exp.
//   - [Service.Verify] checks signature and expiry and returns the claims.
//   - [Service.Refresh] re-issues a valid token's claims with a fresh validity window.
//
// Tokens use the standard compact encoding (base64url header, payload and signature
// joined by dots) and verify with any third-party JWT library given the same key.
//
// # Architecture boundaries
//
// goToken is the public surface. Signing and parsing live in the jwt sub-package; audit
// dispatch lives under internal/. HTTP, CLI and metric export are layered on top and never
// reach past the Service API.
//
// # What this package must NOT do
//
//   - Tell callers why a token was rejected: every verification failure is
//     [ErrInvalidToken]. Causes go to logs, metrics and audit events only.
//   - Store, revoke or cache tokens.
//   - Log or expose the signing key.
//
// # Performance contract
//
// Verify is the hot path: one HMAC or Ed25519 verification, one JSON decode, atomic
// counter updates. Successful verifications emit no audit event.
package goToken
