package security

import (
	"fmt"
	"time"
)

// LongValidityThreshold is the lifetime above which a report warns: issued tokens
// cannot be revoked, so a leak stays usable until exp.
const LongValidityThreshold = 30 * 24 * time.Hour

// Report summarizes the security-relevant configuration of a token service.
type Report struct {
	SigningAlgorithm string
	Symmetric        bool
	KeyBytes         int
	MinKeyBytes      int
	KeyMeetsMinimum  bool
	ValidityDuration time.Duration
	ReservedClaims   string
	AuditEnabled     bool
	MetricsEnabled   bool
	Warnings         []string
}

// ReportInput carries the raw configuration values BuildReport inspects.
type ReportInput struct {
	SigningAlgorithm string
	KeyBytes         int
	ValidityDuration time.Duration
	ReservedClaims   string
	AuditEnabled     bool
	MetricsEnabled   bool
}

// BuildReport derives a Report from input. HMAC keys shorter than the hash output
// (RFC 7518 section 3.2) are flagged but not rejected.
func BuildReport(input ReportInput) Report {
	minKey, symmetric := minKeyBytes(input.SigningAlgorithm)
	keyBytes := input.KeyBytes
	if !symmetric {
		keyBytes = 32
	}

	r := Report{
		SigningAlgorithm: input.SigningAlgorithm,
		Symmetric:        symmetric,
		KeyBytes:         keyBytes,
		MinKeyBytes:      minKey,
		KeyMeetsMinimum:  keyBytes >= minKey,
		ValidityDuration: input.ValidityDuration,
		ReservedClaims:   input.ReservedClaims,
		AuditEnabled:     input.AuditEnabled,
		MetricsEnabled:   input.MetricsEnabled,
	}

	if !r.KeyMeetsMinimum {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"%s key is %d bytes; at least %d are recommended", input.SigningAlgorithm, keyBytes, minKey))
	}
	if input.ValidityDuration > LongValidityThreshold {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"validity duration %s exceeds %s and tokens cannot be revoked", input.ValidityDuration, LongValidityThreshold))
	}
	return r
}

func minKeyBytes(alg string) (int, bool) {
	switch alg {
	case "HS256":
		return 32, true
	case "HS384":
		return 48, true
	case "HS512":
		return 64, true
	default:
		return 0, false
	}
}
