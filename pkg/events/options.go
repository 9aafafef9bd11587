package events

import (
	"fmt"
	"log/slog"

	"github.com/lunarlife/undefined-events/pkg/events/observability"
)

// Option configures an Event, Signal or Bus.
type Option func(*options)

type options struct {
	bus             *Bus
	name            string
	logger          *slog.Logger
	metrics         observability.MetricsRecorder
	spans           observability.SpanManager
	recoverPanics   bool
	defaultPriority Priority
}

func newOptions(opts []Option) options {
	o := options{
		metrics:         observability.NoopMetrics{},
		spans:           observability.NoopSpanManager{},
		defaultPriority: Normal,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithBus forwards every successful raise of a typed event to b.
// Signals and buses ignore this option.
func WithBus(b *Bus) Option {
	return func(o *options) {
		o.bus = b
	}
}

// WithName sets the name used in logs, metrics and spans
// (default: the payload type name).
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger enables structured logging of attach, detach and raise.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics recorder (default: no-op).
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithSpanManager sets the tracing span manager (default: no-op).
func WithSpanManager(s observability.SpanManager) Option {
	return func(o *options) {
		if s != nil {
			o.spans = s
		}
	}
}

// WithPanicRecovery converts listener panics into *PanicError values
// returned from Raise. Without it a panic unwinds through the raiser.
func WithPanicRecovery() Option {
	return func(o *options) {
		o.recoverPanics = true
	}
}

// WithDefaultPriority sets the tier used when a listener is added
// without WithPriority (default: Normal).
func WithDefaultPriority(p Priority) Option {
	return func(o *options) {
		o.defaultPriority = p
	}
}

// ListenerOption configures a single listener.
type ListenerOption func(*listenerConfig)

type listenerConfig struct {
	priority Priority
}

// WithPriority sets the listener's tier.
func WithPriority(p Priority) ListenerOption {
	return func(c *listenerConfig) {
		c.priority = p
	}
}

// resolvePriority applies listener options over the default tier.
// An out-of-range tier is a programming error and panics.
func (o *options) resolvePriority(opts []ListenerOption) Priority {
	cfg := listenerConfig{priority: o.defaultPriority}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.priority.Valid() {
		panic(fmt.Sprintf("events: %v: %d", ErrInvalidPriority, uint8(cfg.priority)))
	}
	return cfg.priority
}
