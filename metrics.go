package goToken

import (
	"sync/atomic"
	"time"
)

// MetricID indexes a counter or histogram in Metrics.
type MetricID uint16

const (
	MetricIssueSuccess MetricID = iota
	MetricIssueFailure
	// MetricReservedClaimRejected counts Issue calls refused under ReservedClaimsReject.
	MetricReservedClaimRejected
	MetricVerifySuccess
	// MetricVerifyFailure counts every token rejection, including those inside Refresh;
	// the per-cause counters below partition it. MetricRefreshFailure additionally
	// counts the Refresh ones.
	MetricVerifyFailure
	MetricVerifyMalformed
	MetricVerifySignatureInvalid
	MetricVerifyAlgorithmMismatch
	MetricVerifyExpired
	MetricVerifyClaimsInvalid
	MetricRefreshSuccess
	MetricRefreshFailure
	// MetricVerifyLatency is the only histogram.
	MetricVerifyLatency
	metricIDCount
)

const cacheLineSize = 64

// latencyBounds are the inclusive upper bounds of the first seven latency buckets.
// The eighth bucket takes everything above 1ms.
var latencyBounds = [...]time.Duration{
	10 * time.Microsecond,
	25 * time.Microsecond,
	50 * time.Microsecond,
	100 * time.Microsecond,
	250 * time.Microsecond,
	500 * time.Microsecond,
	time.Millisecond,
}

const histBucketCount = len(latencyBounds) + 1

// paddedCounter keeps each counter on its own cache line so hot counters updated from
// different cores do not contend.
type paddedCounter struct {
	atomic.Uint64
	_ [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters and the verify latency histogram.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	latency       [histBucketCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters and histograms.
// Histogram buckets are non-cumulative.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns a Metrics configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the verify latency histogram is recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to the counter id.
func (m *Metrics) Inc(id MetricID) {
	if !m.Enabled() || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Observe records d into the histogram id. Only MetricVerifyLatency is a histogram;
// other ids are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if id != MetricVerifyLatency || !m.LatencyEnabled() {
		return
	}
	m.latency[bucketIndex(d)].Add(1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

// Snapshot copies all counters, and the latency histogram when enabled.
// A disabled Metrics yields empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if !m.Enabled() {
		return s
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricVerifyLatency {
			continue
		}
		s.Counters[id] = m.counters[id].Load()
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := range m.latency {
			buckets[i] = m.latency[i].Load()
		}
		s.Histograms[MetricVerifyLatency] = buckets
	}
	return s
}

func bucketIndex(d time.Duration) int {
	for i, bound := range latencyBounds {
		if d <= bound {
			return i
		}
	}
	return len(latencyBounds)
}
