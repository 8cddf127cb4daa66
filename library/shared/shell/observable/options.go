package observable

import (
	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell"
)

// Option configures the observability of a wrapper.
type Option func(*entitystore.Observer)

func WithMetrics(collector shell.MetricsCollector) Option {
	return func(o *entitystore.Observer) {
		o.Metrics = collector
	}
}

func WithTracing(collector shell.TracingCollector) Option {
	return func(o *entitystore.Observer) {
		o.Tracing = collector
	}
}

func WithLogging(logger shell.Logger) Option {
	return func(o *entitystore.Observer) {
		o.Logger = logger
	}
}

func WithContextualLogging(logger shell.ContextualLogger) Option {
	return func(o *entitystore.Observer) {
		o.ContextualLogger = logger
	}
}

func buildObserver(opts []Option) entitystore.Observer {
	var observer entitystore.Observer
	for _, opt := range opts {
		opt(&observer)
	}

	return observer
}
