package memengine

import (
	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine) error

// WithLogger sets the logger for the Engine.
//
// Debug level: loads, applied changes, commits and rollbacks
// Info level: constraint violations and not-found mutations
func WithLogger(logger entitystore.Logger) Option {
	return func(e *Engine) error {
		e.observer.Logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, which takes precedence over WithLogger.
func WithContextualLogger(logger entitystore.ContextualLogger) Option {
	return func(e *Engine) error {
		e.observer.ContextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Engine.
func WithMetrics(collector entitystore.MetricsCollector) Option {
	return func(e *Engine) error {
		e.observer.Metrics = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Engine.
func WithTracing(collector entitystore.TracingCollector) Option {
	return func(e *Engine) error {
		e.observer.Tracing = collector
		return nil
	}
}
