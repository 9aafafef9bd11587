package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records event dispatch metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordRaise records one dispatch pass over an event's listeners.
	RecordRaise(ctx context.Context, event string, invoked int, duration time.Duration, err error)

	// RecordListeners records a change in the number of attached listeners.
	RecordListeners(ctx context.Context, event string, delta int64)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	raises      metric.Int64Counter
	invocations metric.Int64Counter
	failures    metric.Int64Counter
	latency     metric.Float64Histogram
	listeners   metric.Int64UpDownCounter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the shared OTel instruments.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates the instruments on the global meter provider.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("events")

	raises, err := meter.Int64Counter("events.raises",
		metric.WithDescription("Number of dispatch passes"),
	)
	if err != nil {
		return nil, err
	}

	invocations, err := meter.Int64Counter("events.listener.invocations",
		metric.WithDescription("Number of listener calls"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter("events.raise.errors",
		metric.WithDescription("Number of dispatch passes aborted by a listener"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram("events.raise.latency_ms",
		metric.WithDescription("Dispatch pass latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	listeners, err := meter.Int64UpDownCounter("events.listeners.active",
		metric.WithDescription("Number of attached listeners"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		raises:      raises,
		invocations: invocations,
		failures:    failures,
		latency:     latency,
		listeners:   listeners,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordRaise records a dispatch pass.
func (m *otelMetrics) RecordRaise(ctx context.Context, event string, invoked int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("event", event))

	m.raises.Add(ctx, 1, attrs)
	m.invocations.Add(ctx, int64(invoked), attrs)
	m.latency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if err != nil {
		m.failures.Add(ctx, 1, attrs)
	}
}

// RecordListeners records attach (+) and detach (-) changes.
func (m *otelMetrics) RecordListeners(ctx context.Context, event string, delta int64) {
	m.listeners.Add(ctx, delta, metric.WithAttributes(attribute.String("event", event)))
}
