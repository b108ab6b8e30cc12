package goToken

import "github.com/MrEthical07/goToken/internal/security"

// SecurityReport describes the key strength and lifetime posture of a Service.
// Warnings lists advisory findings, such as an HMAC key shorter than the hash output.
type SecurityReport = security.Report

// SecurityReport returns the posture report for s. It never includes key material.
func (s *Service) SecurityReport() SecurityReport {
	if s == nil {
		return SecurityReport{}
	}
	return security.BuildReport(security.ReportInput{
		SigningAlgorithm: string(s.config.Algorithm),
		KeyBytes:         len(s.config.SigningKey),
		ValidityDuration: s.config.ValidityDuration,
		ReservedClaims:   s.config.ReservedClaims.String(),
		AuditEnabled:     s.audit != nil,
		MetricsEnabled:   s.config.Metrics.Enabled,
	})
}
