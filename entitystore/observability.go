package entitystore

import (
	"context"
	"time"
)

const (
	MetricQueryDuration        = "entitystore_query_duration_seconds"
	MetricFlushDuration        = "entitystore_flush_duration_seconds"
	MetricFlushedMutations     = "entitystore_flushed_mutations_total"
	MetricTransactions         = "entitystore_transactions_total"
	MetricConstraintViolations = "entitystore_constraint_violations_total"
	MetricNotFound             = "entitystore_not_found_total"
	MetricPendingChanges       = "entitystore_pending_changes"

	SpanNameQuery  = "entitystore.query"
	SpanNameFlush  = "entitystore.flush"
	SpanNameCommit = "entitystore.commit"

	StatusSuccess             = "success"
	StatusError               = "error"
	StatusCommitted           = "committed"
	StatusRolledBack          = "rolled_back"
	StatusAutoRolledBack      = "auto_rolled_back"
	StatusConstraintViolation = "constraint_violation"
	StatusNotFound            = "not_found"

	LabelEntityType = "entity_type"
	LabelOperation  = "operation"
	LabelStatus     = "status"
	LabelEngine     = "engine"
)

// Logger interface for SQL query logging, operational metrics, warnings, and error reporting.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger interface for context-aware logging with automatic trace correlation.
// *slog.Logger satisfies it.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// MetricsCollector interface for collecting performance and operational metrics.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// ContextualMetricsCollector extends MetricsCollector with context-aware methods for trace correlation.
// It is used when available, falling back to the base MetricsCollector methods otherwise.
type ContextualMetricsCollector interface {
	MetricsCollector
	RecordDurationContext(ctx context.Context, metric string, duration time.Duration, labels map[string]string)
	IncrementCounterContext(ctx context.Context, metric string, labels map[string]string)
	RecordValueContext(ctx context.Context, metric string, value float64, labels map[string]string)
}

// SpanContext represents an active tracing span that can be updated with attributes.
type SpanContext interface {
	SetStatus(status string)
	AddAttribute(key, value string)
}

// TracingCollector interface for distributed tracing, independent of any tracing backend.
type TracingCollector interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext)
	FinishSpan(spanCtx SpanContext, status string, attrs map[string]string)
}

// Observer bundles the optional observability collaborators of a component.
// The zero value is a no-op; a ContextualLogger takes precedence over a Logger.
type Observer struct {
	Logger           Logger
	ContextualLogger ContextualLogger
	Metrics          MetricsCollector
	Tracing          TracingCollector
}

func (o Observer) Debug(ctx context.Context, msg string, args ...any) {
	switch {
	case o.ContextualLogger != nil:
		o.ContextualLogger.DebugContext(ctx, msg, args...)
	case o.Logger != nil:
		o.Logger.Debug(msg, args...)
	}
}

func (o Observer) Info(ctx context.Context, msg string, args ...any) {
	switch {
	case o.ContextualLogger != nil:
		o.ContextualLogger.InfoContext(ctx, msg, args...)
	case o.Logger != nil:
		o.Logger.Info(msg, args...)
	}
}

func (o Observer) Warn(ctx context.Context, msg string, args ...any) {
	switch {
	case o.ContextualLogger != nil:
		o.ContextualLogger.WarnContext(ctx, msg, args...)
	case o.Logger != nil:
		o.Logger.Warn(msg, args...)
	}
}

func (o Observer) Error(ctx context.Context, msg string, args ...any) {
	switch {
	case o.ContextualLogger != nil:
		o.ContextualLogger.ErrorContext(ctx, msg, args...)
	case o.Logger != nil:
		o.Logger.Error(msg, args...)
	}
}

func (o Observer) RecordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if o.Metrics == nil {
		return
	}

	if contextual, ok := o.Metrics.(ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	o.Metrics.RecordDuration(metric, duration, labels)
}

func (o Observer) IncrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if o.Metrics == nil {
		return
	}

	if contextual, ok := o.Metrics.(ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	o.Metrics.IncrementCounter(metric, labels)
}

func (o Observer) RecordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if o.Metrics == nil {
		return
	}

	if contextual, ok := o.Metrics.(ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metric, value, labels)
		return
	}

	o.Metrics.RecordValue(metric, value, labels)
}

// StartSpan returns the original context and a nil span when tracing is disabled.
func (o Observer) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext) {
	if o.Tracing == nil {
		return ctx, nil
	}

	return o.Tracing.StartSpan(ctx, name, attrs)
}

func (o Observer) FinishSpan(span SpanContext, status string, attrs map[string]string) {
	if o.Tracing == nil || span == nil {
		return
	}

	o.Tracing.FinishSpan(span, status, attrs)
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with precision.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// StatusFromError maps an error to the status label used in metrics and spans.
func StatusFromError(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case IsConstraintViolation(err):
		return StatusConstraintViolation
	case IsNotFound(err):
		return StatusNotFound
	default:
		return StatusError
	}
}
