package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lunarlife/undefined-events/pkg/events"
	"github.com/lunarlife/undefined-events/pkg/events/observability"
)

// Config describes how events and buses are built at a composition root.
// Zero values are valid; see Default for the filled-in defaults.
type Config struct {
	// DefaultPriority is the tier used when a listener has no explicit one.
	DefaultPriority string `yaml:"default_priority" json:"default_priority" env:"DEFAULT_PRIORITY"`

	// RecoverPanics turns listener panics into errors returned from Raise.
	RecoverPanics bool `yaml:"recover_panics" json:"recover_panics" env:"RECOVER_PANICS"`

	// Metrics enables OpenTelemetry metrics on the global meter provider.
	Metrics bool `yaml:"metrics" json:"metrics" env:"METRICS"`

	// Tracing enables an OpenTelemetry span per raise.
	Tracing bool `yaml:"tracing" json:"tracing" env:"TRACING"`

	// LogLevel is a slog level name: debug, info, warn or error.
	LogLevel string `yaml:"log_level" json:"log_level" env:"LOG_LEVEL"`

	// HandlerPriorities overrides the tier of discovered handler methods,
	// keyed by method name. In the environment: "OnOrder:high,OnAudit:monitor".
	HandlerPriorities map[string]string `yaml:"handler_priorities" json:"handler_priorities" env:"HANDLER_PRIORITIES"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		DefaultPriority: events.Normal.String(),
		LogLevel:        "info",
	}
}

// Validate checks that every named priority and the log level parse.
func (c Config) Validate() error {
	if c.DefaultPriority != "" {
		if _, err := events.ParsePriority(c.DefaultPriority); err != nil {
			return fmt.Errorf("default_priority: %w", err)
		}
	}
	for method, name := range c.HandlerPriorities {
		if _, err := events.ParsePriority(name); err != nil {
			return fmt.Errorf("handler_priorities[%s]: %w", method, err)
		}
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c Config) level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// Logger builds a JSON slog logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	lvl, err := c.level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// EventOptions converts the configuration into options for NewEvent,
// NewSignal and NewBus. logger may be nil.
func (c Config) EventOptions(logger *slog.Logger) ([]events.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var opts []events.Option
	if c.DefaultPriority != "" {
		p, _ := events.ParsePriority(c.DefaultPriority)
		opts = append(opts, events.WithDefaultPriority(p))
	}
	if c.RecoverPanics {
		opts = append(opts, events.WithPanicRecovery())
	}
	if c.Metrics {
		opts = append(opts, events.WithMetrics(observability.NewMetricsRecorder()))
	}
	if c.Tracing {
		opts = append(opts, events.WithSpanManager(observability.NewSpanManager()))
	}
	if logger != nil {
		opts = append(opts, events.WithLogger(logger))
	}
	return opts, nil
}
