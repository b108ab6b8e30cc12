package goToken

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/MrEthical07/goToken/jwt"
)

// Algorithm is the signing algorithm identifier written to the token header.
type Algorithm = jwt.Algorithm

const (
	// AlgHS256 is the default algorithm.
	AlgHS256 = jwt.AlgHS256
	AlgHS384 = jwt.AlgHS384
	AlgHS512 = jwt.AlgHS512
	// AlgEdDSA signs with an Ed25519 private key and verifies with its derived public key.
	AlgEdDSA = jwt.AlgEdDSA
)

// SupportedAlgorithms returns the accepted algorithms, HS256 first.
func SupportedAlgorithms() []Algorithm {
	return slices.Clone(jwt.SupportedAlgorithms)
}

// ParseAlgorithm resolves a case-insensitive algorithm name such as "hs512" or "ed25519".
func ParseAlgorithm(name string) (Algorithm, error) {
	alg, err := jwt.ParseAlgorithm(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return alg, nil
}

const (
	// DefaultValidityDuration is the token lifetime when Config.ValidityDuration is zero.
	DefaultValidityDuration = 24 * time.Hour
	// MinValidityDuration is the shortest accepted lifetime. Timestamps have second
	// resolution, so anything shorter would issue tokens that are already expired.
	MinValidityDuration = time.Second
	defaultAuditBuffer  = 1024
)

// ReservedClaimsPolicy decides what Issue does with caller-supplied iat/exp.
type ReservedClaimsPolicy uint8

const (
	// ReservedClaimsOverwrite silently replaces caller-supplied iat/exp. It is the default.
	ReservedClaimsOverwrite ReservedClaimsPolicy = iota
	// ReservedClaimsReject fails Issue with ErrReservedClaim when iat or exp is present.
	ReservedClaimsReject
)

func (p ReservedClaimsPolicy) String() string {
	switch p {
	case ReservedClaimsOverwrite:
		return "overwrite"
	case ReservedClaimsReject:
		return "reject"
	default:
		return "unknown"
	}
}

// Config is the immutable configuration of a Service.
//
// A Config is cloned when the Service is built; mutating the caller's copy (including
// the SigningKey slice) afterwards has no effect on the Service.
type Config struct {
	SigningKey []byte
	Algorithm  Algorithm
	// ValidityDuration is the token lifetime. It must be a whole number of seconds of at
	// least MinValidityDuration, since iat and exp have second resolution.
	ValidityDuration time.Duration
	ReservedClaims   ReservedClaimsPolicy
	Audit            AuditConfig
	Metrics          MetricsConfig
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters and the verify latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns HS256, a 24h validity window, overwrite policy and metrics on.
// The signing key is left empty and must be supplied.
func DefaultConfig() Config {
	return Config{
		Algorithm:        AlgHS256,
		ValidityDuration: DefaultValidityDuration,
		ReservedClaims:   ReservedClaimsOverwrite,
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: defaultAuditBuffer,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Algorithm == "" {
		c.Algorithm = def.Algorithm
	}
	if c.ValidityDuration == 0 {
		c.ValidityDuration = def.ValidityDuration
	}
	if c.Audit.Enabled && c.Audit.BufferSize == 0 {
		c.Audit.BufferSize = def.Audit.BufferSize
	}
	return c
}

// Validate reports the first problem with c as an error wrapping ErrConfig.
func (c *Config) Validate() error {
	if len(c.SigningKey) == 0 {
		return fmt.Errorf("%w: signing key is required", ErrConfig)
	}
	if !slices.Contains(jwt.SupportedAlgorithms, c.Algorithm) {
		return fmt.Errorf("%w: algorithm %q is not one of %v", ErrConfig, c.Algorithm, jwt.SupportedAlgorithms)
	}
	if c.ValidityDuration < MinValidityDuration {
		return fmt.Errorf("%w: validity duration must be >= %s", ErrConfig, MinValidityDuration)
	}
	if c.ValidityDuration%time.Second != 0 {
		return fmt.Errorf("%w: validity duration %s is not a whole number of seconds", ErrConfig, c.ValidityDuration)
	}
	switch c.ReservedClaims {
	case ReservedClaimsOverwrite, ReservedClaimsReject:
	default:
		return fmt.Errorf("%w: unknown reserved claims policy %d", ErrConfig, c.ReservedClaims)
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return fmt.Errorf("%w: audit buffer size must be > 0 when audit is enabled", ErrConfig)
	}
	return nil
}

// String renders c without key material.
func (c Config) String() string {
	return fmt.Sprintf("goToken.Config{Algorithm:%s ValidityDuration:%s ReservedClaims:%s SigningKey:%s}",
		c.Algorithm, c.ValidityDuration, c.ReservedClaims, redactedKey(c.SigningKey))
}

// LogValue implements slog.LogValuer so a Config can be logged without leaking the key.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("algorithm", string(c.Algorithm)),
		slog.Duration("validity", c.ValidityDuration),
		slog.String("reserved_claims", c.ReservedClaims.String()),
		slog.String("signing_key", redactedKey(c.SigningKey)),
		slog.Bool("audit", c.Audit.Enabled),
		slog.Bool("metrics", c.Metrics.Enabled),
	)
}

func redactedKey(key []byte) string {
	if len(key) == 0 {
		return "<empty>"
	}
	return fmt.Sprintf("<redacted %d bytes>", len(key))
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.SigningKey = cloneBytes(cfg.SigningKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
