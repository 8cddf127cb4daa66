package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

const spanAttrStatus = "status"

// TracingCollector implements entitystore.TracingCollector on an OpenTelemetry tracer.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a collector; tracer should come from your TracerProvider.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts a span carrying attrs and returns the context holding it.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, entitystore.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(toAttributes(attrs)...))

	return spanCtx, &OTelSpanContext{span: span}
}

// FinishSpan sets the final attributes and status and ends the span.
// Span contexts that were not created by this collector are ignored.
func (t *TracingCollector) FinishSpan(spanCtx entitystore.SpanContext, status string, attrs map[string]string) {
	otelSpanCtx, ok := spanCtx.(*OTelSpanContext)
	if !ok || otelSpanCtx == nil {
		return
	}

	for key, value := range attrs {
		otelSpanCtx.AddAttribute(key, value)
	}
	otelSpanCtx.SetStatus(status)
	otelSpanCtx.span.End()
}

// OTelSpanContext wraps an OpenTelemetry span.
type OTelSpanContext struct {
	span trace.Span
}

// SetStatus maps entity store statuses onto span codes.
// Expected outcomes like not found or constraint violations are errors of the operation, so the span
// is marked failed; the status attribute keeps the exact outcome.
func (s *OTelSpanContext) SetStatus(status string) {
	s.span.SetAttributes(attribute.String(spanAttrStatus, status))

	switch status {
	case entitystore.StatusSuccess, entitystore.StatusCommitted, entitystore.StatusRolledBack:
		s.span.SetStatus(codes.Ok, "")
	case entitystore.StatusError,
		entitystore.StatusAutoRolledBack,
		entitystore.StatusConstraintViolation,
		entitystore.StatusNotFound:
		s.span.SetStatus(codes.Error, status)
	}
}

// AddAttribute adds a string attribute to the span.
func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

var (
	_ entitystore.TracingCollector = (*TracingCollector)(nil)
	_ entitystore.SpanContext      = (*OTelSpanContext)(nil)
)
