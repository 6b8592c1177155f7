// Package observe provides application-wide observability primitives for
// SceneDeck: OpenTelemetry metrics, tracing helpers, trace-aware logging, and
// HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is installed by [InitProvider] so that metrics can be
// scraped from the /metrics endpoint of the HTTP companion. A package-level
// default [Metrics] instance ([DefaultMetrics]) is provided for convenience;
// tests should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all SceneDeck metrics.
const meterName = "github.com/MrWong99/scenedeck"

// Status attribute values shared by counters.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// --- Latency histograms ---

	// ExtractDuration tracks how long one Extract call takes.
	ExtractDuration metric.Float64Histogram

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram

	// --- Counters ---

	// ExtractCalls counts extraction runs. Use with attribute:
	//   attribute.String("strategy", ...)
	ExtractCalls metric.Int64Counter

	// ScenesExtracted counts records produced. Use with attribute:
	//   attribute.String("strategy", ...)
	ScenesExtracted metric.Int64Counter

	// FilesSkipped counts inputs that never reached the extractor. Use with attribute:
	//   attribute.String("reason", ...)
	FilesSkipped metric.Int64Counter

	// Launches counts launch attempts. Use with attribute:
	//   attribute.String("status", ...)
	Launches metric.Int64Counter

	// --- Gauges ---

	// CollectionSize tracks the number of records currently held.
	CollectionSize metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds). Extraction
// is CPU-bound and usually finishes in well under a millisecond.
var latencyBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.ExtractDuration, err = m.Float64Histogram("scenedeck.extract.duration",
		metric.WithDescription("Latency of a single scene extraction."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("scenedeck.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.ExtractCalls, err = m.Int64Counter("scenedeck.extract.calls",
		metric.WithDescription("Total extraction runs by strategy."),
	); err != nil {
		return nil, err
	}
	if met.ScenesExtracted, err = m.Int64Counter("scenedeck.scenes.extracted",
		metric.WithDescription("Total scene records produced by strategy."),
	); err != nil {
		return nil, err
	}
	if met.FilesSkipped, err = m.Int64Counter("scenedeck.files.skipped",
		metric.WithDescription("Total inputs skipped before extraction by reason."),
	); err != nil {
		return nil, err
	}
	if met.Launches, err = m.Int64Counter("scenedeck.launches",
		metric.WithDescription("Total launch attempts by status."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.CollectionSize, err = m.Int64UpDownCounter("scenedeck.collection.size",
		metric.WithDescription("Number of scene records currently in the collection."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordExtraction records one extraction run: its latency, the strategy that
// produced the result and how many scenes it yielded.
func (m *Metrics) RecordExtraction(ctx context.Context, strategy string, scenes int, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("strategy", strategy))
	m.ExtractDuration.Record(ctx, d.Seconds(), attrs)
	m.ExtractCalls.Add(ctx, 1, attrs)
	m.ScenesExtracted.Add(ctx, int64(scenes), attrs)
}

// RecordSkippedFile records an input that was dropped before extraction.
func (m *Metrics) RecordSkippedFile(ctx context.Context, reason string) {
	m.FilesSkipped.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)),
	)
}

// RecordLaunch records a launch attempt with the given status.
func (m *Metrics) RecordLaunch(ctx context.Context, status string) {
	m.Launches.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}
