// Package server exposes a goToken.Service over HTTP with a chi router.
//
// Routes:
//
//	POST /v1/tokens          issue (requires X-API-Key)
//	POST /v1/tokens/verify   verify
//	POST /v1/tokens/refresh  refresh (rate limited per client)
//	GET  /v1/claims          echo the bearer token's claims
//	GET  /metrics            Prometheus exposition
//	GET  /healthz            liveness
//
// Verification failures always answer 401 with the same body.
package server
