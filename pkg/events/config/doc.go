/*
Package config loads event bus settings for a composition root.

# Sources

Settings come from a YAML or JSON file, then EVENTS_-prefixed environment
variables, in that order:

	default_priority: normal
	recover_panics: true
	metrics: true
	tracing: false
	log_level: debug
	handler_priorities:
	  OnOrderPlaced: high
	  OnAnything: monitor

	cfg, err := config.FromFile("events.yaml") // EVENTS_LOG_LEVEL=warn wins over the file

Programs without a file use config.Load, which starts from Default.

# Building Events

EventOptions turns a Config into options shared by every event and bus the
program creates:

	logger, _ := cfg.Logger(os.Stderr)
	opts, err := cfg.EventOptions(logger)
	bus := events.NewBus(opts...)
	placed := events.NewEvent[OrderPlaced](append(opts, events.WithBus(bus))...)

HandlerPriorities feeds discover.WithPriorities.
*/
package config
