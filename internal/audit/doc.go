// Package audit relays token lifecycle events (issued, rejected, refreshed) to a sink
// without blocking the signing and verification paths.
//
// # Components
//
//   - [Sink]: consumer interface, implemented by channel, JSON writer, slog and no-op sinks.
//   - [Dispatcher]: buffered relay that either drops or blocks when the buffer is full.
//   - [Event]: one record with ID, timestamp, type, subject and rejection cause.
//
// The Service decides which events to emit. This package only buffers and delivers them.
// Events never carry token strings or key material, and nothing here imports goToken.
package audit
