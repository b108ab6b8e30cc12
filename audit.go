package goToken

import (
	"context"
	"io"
	"log/slog"

	"github.com/MrEthical07/goToken/internal/audit"
)

// AuditEvent is a token lifecycle record delivered to an AuditSink. It carries the
// rejection cause for failed verifications, which the returned error deliberately does not.
type AuditEvent = audit.Event

// AuditSink consumes audit events. Emit runs on the dispatcher goroutine.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink drops every event.
type NoOpSink = audit.NoOpSink

// ChannelSink buffers events on a channel exposed by Events.
type ChannelSink = audit.ChannelSink

// JSONWriterSink writes newline-delimited JSON events.
type JSONWriterSink = audit.JSONWriterSink

// SlogSink writes events through a *slog.Logger.
type SlogSink = audit.SlogSink

// NewChannelSink returns a ChannelSink with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink writing one JSON object per line to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

// NewSlogSink returns a sink logging through logger (slog.Default when nil).
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return audit.NewSlogSink(logger)
}

const (
	auditEventTokenIssued          = "token_issued"
	auditEventTokenIssueFailed     = "token_issue_failed"
	auditEventTokenRejected        = "token_rejected"
	auditEventTokenRefreshed       = "token_refreshed"
	auditEventTokenRefreshRejected = "token_refresh_rejected"
)

// AuditErrorCode is the machine-readable cause recorded in AuditEvent.Error.
type AuditErrorCode string

const (
	AuditErrReservedClaim     AuditErrorCode = "reserved_claim"
	AuditErrEncoding          AuditErrorCode = "encoding"
	AuditErrSigning           AuditErrorCode = "signing"
	AuditErrMalformed         AuditErrorCode = "malformed"
	AuditErrSignatureInvalid  AuditErrorCode = "signature_invalid"
	AuditErrAlgorithmMismatch AuditErrorCode = "algorithm_mismatch"
	AuditErrExpired           AuditErrorCode = "expired"
	AuditErrClaimsInvalid     AuditErrorCode = "claims_invalid"
)
