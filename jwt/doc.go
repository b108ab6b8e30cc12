// Package jwt is the signing primitive behind goToken: it encodes claims as compact JWS
// (base64url header, payload and signature joined by dots), signs them with a single
// configured key and verifies them back with strict, expiry-only claim semantics.
//
// # What this package must NOT do
//
//   - Compute iat/exp (the Service owns reserved claims).
//   - Log, count or audit anything.
//   - Accept any algorithm other than the one it was constructed with.
package jwt
