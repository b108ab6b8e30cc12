// Package otel binds goToken counters and the verify latency histogram to
// OpenTelemetry observable instruments.
//
// [NewOTelExporter] registers an Int64ObservableCounter per counter. Each histogram
// becomes a <name>_bucket gauge with one cumulative point per "le" attribute value,
// plus a <name>_count gauge. A single callback reads
// [goToken.Service.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate service state.
package otel
