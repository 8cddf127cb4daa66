package sqliteengine

import (
	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

// Option defines a functional option for configuring the Engine.
type Option func(*engineConfig) error

// WithTableNames sets the names of the entities and unique keys tables.
func WithTableNames(entitiesTable, uniqueKeysTable string) Option {
	return func(cfg *engineConfig) error {
		if entitiesTable == "" || uniqueKeysTable == "" {
			return entitystore.ErrEmptyTableNameSupplied
		}

		cfg.config.Tables.Entities = entitiesTable
		cfg.config.Tables.UniqueKeys = uniqueKeysTable

		return nil
	}
}

// WithLogger sets the logger for the Engine.
func WithLogger(logger entitystore.Logger) Option {
	return func(cfg *engineConfig) error {
		cfg.config.Observer.Logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, which takes precedence over WithLogger.
func WithContextualLogger(logger entitystore.ContextualLogger) Option {
	return func(cfg *engineConfig) error {
		cfg.config.Observer.ContextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Engine.
func WithMetrics(collector entitystore.MetricsCollector) Option {
	return func(cfg *engineConfig) error {
		cfg.config.Observer.Metrics = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Engine.
func WithTracing(collector entitystore.TracingCollector) Option {
	return func(cfg *engineConfig) error {
		cfg.config.Observer.Tracing = collector
		return nil
	}
}
