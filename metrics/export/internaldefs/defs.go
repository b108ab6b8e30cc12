package internaldefs

import (
	goToken "github.com/MrEthical07/goToken"
)

// CounterDef names one goToken counter for exporters.
type CounterDef struct {
	ID   goToken.MetricID
	Name string
	Help string
}

// HistogramDef names one goToken histogram for exporters.
type HistogramDef struct {
	ID   goToken.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter exported for Service.AuditDropped.
const AuditDroppedName = "gotoken_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// CounterDefs lists every exported counter in MetricID order.
var CounterDefs = []CounterDef{
	{ID: goToken.MetricIssueSuccess, Name: "gotoken_issue_success_total", Help: "Tokens issued."},
	{ID: goToken.MetricIssueFailure, Name: "gotoken_issue_failure_total", Help: "Issue calls that returned an error."},
	{ID: goToken.MetricReservedClaimRejected, Name: "gotoken_reserved_claim_rejected_total", Help: "Issue calls refused because the caller supplied iat or exp."},
	{ID: goToken.MetricVerifySuccess, Name: "gotoken_verify_success_total", Help: "Tokens accepted by Verify."},
	{ID: goToken.MetricVerifyFailure, Name: "gotoken_verify_failure_total", Help: "Tokens rejected by Verify or Refresh, all causes."},
	{ID: goToken.MetricVerifyMalformed, Name: "gotoken_verify_malformed_total", Help: "Rejections for structurally invalid tokens."},
	{ID: goToken.MetricVerifySignatureInvalid, Name: "gotoken_verify_signature_invalid_total", Help: "Rejections for signature mismatch."},
	{ID: goToken.MetricVerifyAlgorithmMismatch, Name: "gotoken_verify_algorithm_mismatch_total", Help: "Rejections for a header algorithm other than the configured one."},
	{ID: goToken.MetricVerifyExpired, Name: "gotoken_verify_expired_total", Help: "Rejections for expired tokens."},
	{ID: goToken.MetricVerifyClaimsInvalid, Name: "gotoken_verify_claims_invalid_total", Help: "Rejections for a missing or non-numeric exp claim."},
	{ID: goToken.MetricRefreshSuccess, Name: "gotoken_refresh_success_total", Help: "Tokens re-issued by Refresh."},
	{ID: goToken.MetricRefreshFailure, Name: "gotoken_refresh_failure_total", Help: "Refresh calls that returned an error."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goToken.MetricVerifyLatency, Name: "gotoken_verify_latency_seconds", Help: "Verify latency histogram."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The eighth bucket is +Inf.
var HistogramUpperBounds = []float64{
	0.00001,
	0.000025,
	0.00005,
	0.0001,
	0.00025,
	0.0005,
	0.001,
}

// BucketCount is the number of histogram buckets, +Inf included.
const BucketCount = 8

// HistogramBucketLabels are the "le" label values for each bucket, +Inf included,
// formatted the way Prometheus renders bucket bounds.
var HistogramBucketLabels = [BucketCount]string{
	"1e-05",
	"2.5e-05",
	"5e-05",
	"0.0001",
	"0.00025",
	"0.0005",
	"0.001",
	"+Inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling short input.
func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i, n := range raw {
		running += n
		out[i] = running
	}
	return out
}
