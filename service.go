package goToken

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/goToken/internal/audit"
	"github.com/MrEthical07/goToken/jwt"
)

// Service issues, verifies and refreshes signed, time-bounded tokens.
//
// A Service is immutable after Build and safe for concurrent use. Issue, Verify and
// Refresh perform no I/O; the only shared state they touch is atomic counters and the
// optional audit channel.
type Service struct {
	config  Config
	signer  *jwt.Manager
	now     func() time.Time
	logger  *slog.Logger
	metrics *Metrics
	audit   *audit.Dispatcher
}

// NewService builds a Service for key. An optional cfg replaces DefaultConfig; a zero
// Algorithm or ValidityDuration in it falls back to the default, and its SigningKey is
// ignored in favour of key.
func NewService(key []byte, cfg ...Config) (*Service, error) {
	b := New()
	if len(cfg) > 0 {
		b.WithConfig(cfg[0])
	}
	return b.WithSigningKey(key).Build()
}

// Issue signs a copy of claims with iat set to now and exp set to iat plus the validity
// duration.
//
// Caller-supplied iat/exp are overwritten, or rejected with ErrReservedClaim under
// ReservedClaimsReject. Issue returns ErrEncoding when a value is not JSON-serializable.
func (s *Service) Issue(claims Claims) (string, error) {
	token, code, err := s.issue(claims)
	if err != nil {
		s.metrics.Inc(MetricIssueFailure)
		s.emitAudit(AuditEvent{
			EventType: auditEventTokenIssueFailed,
			Subject:   claims.Subject(),
			Error:     string(code),
		})
		return "", err
	}

	s.metrics.Inc(MetricIssueSuccess)
	s.emitAudit(AuditEvent{
		EventType: auditEventTokenIssued,
		Subject:   claims.Subject(),
		Success:   true,
	})
	return token, nil
}

// Verify checks the signature under the configured key and algorithm and that the current
// time is before exp, then returns every claim including iat and exp.
//
// Every rejection returns ErrInvalidToken itself, unwrapped. The cause is only visible
// through debug logs, per-cause metrics and the token_rejected audit event.
func (s *Service) Verify(token string) (Claims, error) {
	var start time.Time
	timed := s.metrics.LatencyEnabled()
	if timed {
		start = time.Now()
	}

	claims, failure := s.verify(token)

	if timed {
		s.metrics.Observe(MetricVerifyLatency, time.Since(start))
	}
	if failure != jwt.FailureNone {
		s.recordRejection("verify", auditEventTokenRejected, failure)
		return nil, ErrInvalidToken
	}

	s.metrics.Inc(MetricVerifySuccess)
	return claims, nil
}

// Refresh verifies token and issues a new one carrying the same claims minus iat/exp,
// with a full validity window starting now. The input token stays valid until its own exp.
//
// An invalid or expired input returns ErrInvalidToken; no token is ever minted from
// claims that failed verification.
func (s *Service) Refresh(token string) (string, error) {
	claims, failure := s.verify(token)
	if failure != jwt.FailureNone {
		s.metrics.Inc(MetricRefreshFailure)
		s.recordRejection("refresh", auditEventTokenRefreshRejected, failure)
		return "", ErrInvalidToken
	}

	next, code, err := s.issue(claims.withoutReserved())
	if err != nil {
		s.metrics.Inc(MetricRefreshFailure)
		s.emitAudit(AuditEvent{
			EventType: auditEventTokenRefreshRejected,
			Subject:   claims.Subject(),
			Error:     string(code),
		})
		return "", err
	}

	s.metrics.Inc(MetricRefreshSuccess)
	s.emitAudit(AuditEvent{
		EventType: auditEventTokenRefreshed,
		Subject:   claims.Subject(),
		Success:   true,
	})
	return next, nil
}

// Algorithm returns the configured signing algorithm.
func (s *Service) Algorithm() Algorithm {
	return s.config.Algorithm
}

// ValidityDuration returns the lifetime granted to issued and refreshed tokens.
func (s *Service) ValidityDuration() time.Duration {
	return s.config.ValidityDuration
}

// MetricsSnapshot returns a copy of the service counters.
func (s *Service) MetricsSnapshot() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// AuditDropped returns the number of audit events dropped on a full buffer.
func (s *Service) AuditDropped() uint64 {
	return s.audit.Dropped()
}

// Close flushes and stops the audit dispatcher. Token operations keep working after
// Close; only audit delivery stops.
func (s *Service) Close() {
	s.audit.Close()
}

func (s *Service) issue(claims Claims) (string, AuditErrorCode, error) {
	if s.config.ReservedClaims == ReservedClaimsReject {
		if key, ok := claims.hasReserved(); ok {
			s.metrics.Inc(MetricReservedClaimRejected)
			return "", AuditErrReservedClaim, fmt.Errorf("%w: %q is computed by the service", ErrReservedClaim, key)
		}
	}

	issuedAt := s.now().Unix()
	payload := claims.Clone()
	payload[ClaimIssuedAt] = issuedAt
	payload[ClaimExpiresAt] = time.Unix(issuedAt, 0).Add(s.config.ValidityDuration).Unix()

	token, err := s.signer.Sign(payload)
	if err != nil {
		if errors.Is(err, jwt.ErrEncode) {
			return "", AuditErrEncoding, fmt.Errorf("%w: %v", ErrEncoding, err)
		}
		return "", AuditErrSigning, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return token, "", nil
}

func (s *Service) verify(token string) (Claims, jwt.Failure) {
	raw, err := s.signer.Parse(token, s.now())
	if err != nil {
		var pe *jwt.ParseError
		if errors.As(err, &pe) && pe.Failure != jwt.FailureNone {
			return nil, pe.Failure
		}
		return nil, jwt.FailureMalformed
	}
	return Claims(raw), jwt.FailureNone
}

func (s *Service) recordRejection(op, eventType string, failure jwt.Failure) {
	s.metrics.Inc(MetricVerifyFailure)
	s.metrics.Inc(failureMetric(failure))
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "token rejected",
		slog.String("op", op),
		slog.String("cause", failure.String()),
		slog.String("algorithm", string(s.config.Algorithm)),
	)
	s.emitAudit(AuditEvent{
		EventType: eventType,
		Error:     string(failureAuditCode(failure)),
	})
}

func (s *Service) emitAudit(event AuditEvent) {
	if s.audit == nil {
		return
	}
	event.Algorithm = string(s.config.Algorithm)
	event.Timestamp = s.now().UTC()
	s.audit.Emit(context.Background(), event)
}

func failureMetric(f jwt.Failure) MetricID {
	switch f {
	case jwt.FailureSignature:
		return MetricVerifySignatureInvalid
	case jwt.FailureAlgorithm:
		return MetricVerifyAlgorithmMismatch
	case jwt.FailureExpired:
		return MetricVerifyExpired
	case jwt.FailureClaims:
		return MetricVerifyClaimsInvalid
	default:
		return MetricVerifyMalformed
	}
}

func failureAuditCode(f jwt.Failure) AuditErrorCode {
	switch f {
	case jwt.FailureSignature:
		return AuditErrSignatureInvalid
	case jwt.FailureAlgorithm:
		return AuditErrAlgorithmMismatch
	case jwt.FailureExpired:
		return AuditErrExpired
	case jwt.FailureClaims:
		return AuditErrClaimsInvalid
	default:
		return AuditErrMalformed
	}
}
