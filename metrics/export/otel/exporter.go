package otel

import (
	"context"
	"errors"
	"fmt"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// MetricsSource is satisfied by *goToken.Service.
type MetricsSource interface {
	MetricsSnapshot() goToken.MetricsSnapshot
	AuditDropped() uint64
}

// bucketAttrs holds one precomputed le attribute set per bucket.
var bucketAttrs = func() [internaldefs.BucketCount]metric.ObserveOption {
	var out [internaldefs.BucketCount]metric.ObserveOption
	for i, le := range internaldefs.HistogramBucketLabels {
		out[i] = metric.WithAttributeSet(attribute.NewSet(attribute.String("le", le)))
	}
	return out
}()

type observedCounter struct {
	id         goToken.MetricID
	instrument metric.Int64ObservableCounter
}

// observedHistogram flattens one histogram into a cumulative bucket gauge keyed by the
// le attribute plus a count gauge. OTel has no asynchronous histogram instrument.
type observedHistogram struct {
	id     goToken.MetricID
	bucket metric.Int64ObservableGauge
	count  metric.Int64ObservableGauge
}

// OTelExporter publishes goToken metrics as observable instruments on a caller-owned Meter.
type OTelExporter struct {
	source       MetricsSource
	registration metric.Registration
	counters     []observedCounter
	histograms   []observedHistogram
	auditDropped metric.Int64ObservableCounter
}

// NewOTelExporter registers instruments for svc on meter.
func NewOTelExporter(meter metric.Meter, svc *goToken.Service) (*OTelExporter, error) {
	if svc == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, svc)
}

// NewOTelExporterFromSource registers instruments backed by source.
func NewOTelExporterFromSource(meter metric.Meter, source MetricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{source: source}
	var observables []metric.Observable

	for _, def := range internaldefs.CounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create counter %s: %w", def.Name, err)
		}
		e.counters = append(e.counters, observedCounter{id: def.ID, instrument: ins})
		observables = append(observables, ins)
	}

	for _, def := range internaldefs.HistogramDefs {
		h, err := newObservedHistogram(meter, def)
		if err != nil {
			return nil, err
		}
		e.histograms = append(e.histograms, h)
		observables = append(observables, h.bucket, h.count)
	}

	dropped, err := meter.Int64ObservableCounter(
		internaldefs.AuditDroppedName,
		metric.WithDescription(internaldefs.AuditDroppedHelp),
	)
	if err != nil {
		return nil, fmt.Errorf("create counter %s: %w", internaldefs.AuditDroppedName, err)
	}
	e.auditDropped = dropped
	observables = append(observables, dropped)

	reg, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = reg
	return e, nil
}

func newObservedHistogram(meter metric.Meter, def internaldefs.HistogramDef) (observedHistogram, error) {
	bucketName := def.Name + "_bucket"
	bucket, err := meter.Int64ObservableGauge(bucketName,
		metric.WithDescription(def.Help+" Cumulative count per le bound."),
		metric.WithUnit("{observation}"),
	)
	if err != nil {
		return observedHistogram{}, fmt.Errorf("create gauge %s: %w", bucketName, err)
	}

	countName := def.Name + "_count"
	count, err := meter.Int64ObservableGauge(countName, metric.WithDescription(def.Help+" Total samples."))
	if err != nil {
		return observedHistogram{}, fmt.Errorf("create gauge %s: %w", countName, err)
	}
	return observedHistogram{id: def.ID, bucket: bucket, count: count}, nil
}

// observe takes one snapshot per collection so every instrument reports the same instant.
func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()
	for _, c := range e.counters {
		o.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
	}
	for _, h := range e.histograms {
		raw, ok := snapshot.Histograms[h.id]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		for i, n := range cumulative {
			o.ObserveInt64(h.bucket, int64(n), bucketAttrs[i])
		}
		o.ObserveInt64(h.count, int64(cumulative[internaldefs.BucketCount-1]))
	}
	o.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
