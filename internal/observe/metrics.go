// Package observe provides the OpenTelemetry metric instruments used by the
// presenter pipeline and the Prometheus bridge that serves them on /metrics.
//
// Tests should build their own [Metrics] with [NewMetrics] and a
// ManualReader-backed provider instead of touching the global one.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/teslashibe/go-presenter"

// Metrics holds every instrument recorded by the pipeline.
type Metrics struct {
	// Evaluations counts targeting decisions. Attribute: status.
	Evaluations metric.Int64Counter

	// Clarity records the Laplacian variance of each evaluated region.
	Clarity metric.Float64Histogram

	// Motion records the mean absolute difference against the previous region.
	// Only recorded when the stability gate actually ran.
	Motion metric.Float64Histogram

	// OCRDuration tracks text recognition latency. Attribute: engine.
	OCRDuration metric.Float64Histogram

	// OCRErrors counts failed recognitions. Attribute: engine.
	OCRErrors metric.Int64Counter

	// Alerts counts surfaced sound alerts. Attribute: label.
	Alerts metric.Int64Counter

	// ClassifyDuration tracks sound classification latency.
	ClassifyDuration metric.Float64Histogram

	// Viewers tracks connected dashboard websocket clients.
	Viewers metric.Int64UpDownCounter
}

var latencyBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

var clarityBuckets = []float64{
	1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000,
}

var motionBuckets = []float64{
	0.5, 1, 2, 5, 10, 20, 40, 80, 160,
}

// NewMetrics creates all instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Evaluations, err = m.Int64Counter("presenter.targeting.evaluations",
		metric.WithDescription("Targeting decisions by resulting status."),
	); err != nil {
		return nil, err
	}
	if met.Clarity, err = m.Float64Histogram("presenter.targeting.clarity",
		metric.WithDescription("Laplacian variance of the viewfinder region."),
		metric.WithExplicitBucketBoundaries(clarityBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Motion, err = m.Float64Histogram("presenter.targeting.motion",
		metric.WithDescription("Mean absolute difference between consecutive regions."),
		metric.WithExplicitBucketBoundaries(motionBuckets...),
	); err != nil {
		return nil, err
	}
	if met.OCRDuration, err = m.Float64Histogram("presenter.ocr.duration",
		metric.WithDescription("Latency of text recognition."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.OCRErrors, err = m.Int64Counter("presenter.ocr.errors",
		metric.WithDescription("Failed text recognitions by engine."),
	); err != nil {
		return nil, err
	}
	if met.Alerts, err = m.Int64Counter("presenter.alerts",
		metric.WithDescription("Sound alerts surfaced to the user by label."),
	); err != nil {
		return nil, err
	}
	if met.ClassifyDuration, err = m.Float64Histogram("presenter.audio.classify.duration",
		metric.WithDescription("Latency of sound classification."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Viewers, err = m.Int64UpDownCounter("presenter.web.viewers",
		metric.WithDescription("Connected dashboard websocket clients."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// Discard returns instruments backed by a no-op provider.
func Discard() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider())
	return m
}

// RecordEvaluation records one targeting decision. motion is only recorded
// when measured is true.
func (m *Metrics) RecordEvaluation(ctx context.Context, status string, clarity, motion float64, measured bool) {
	m.Evaluations.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.Clarity.Record(ctx, clarity)
	if measured {
		m.Motion.Record(ctx, motion)
	}
}

// RecordOCR records one recognition attempt.
func (m *Metrics) RecordOCR(ctx context.Context, engine string, d time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("engine", engine))
	m.OCRDuration.Record(ctx, d.Seconds(), attrs)
	if err != nil {
		m.OCRErrors.Add(ctx, 1, attrs)
	}
}

// RecordAlert counts one surfaced alert.
func (m *Metrics) RecordAlert(ctx context.Context, label string) {
	m.Alerts.Add(ctx, 1, metric.WithAttributes(attribute.String("label", label)))
}
