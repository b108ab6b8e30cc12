// Package prometheus exposes goToken counters and the verify latency histogram through
// github.com/prometheus/client_golang.
//
// [Exporter] implements prometheus.Collector. Counter names are gotoken_*_total; the
// single histogram is gotoken_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register in the global Prometheus registry. Callers register the collector or
//     mount Handler.
//   - Mutate service state.
package prometheus
