// Package oteladapters provides OpenTelemetry adapters for the entitystore observability interfaces.
//
// MetricsCollector maps durations to histograms, counters to counters and values to gauges.
// TracingCollector wraps an OpenTelemetry tracer. SlogBridgeLogger and OTelLogger implement
// entitystore.ContextualLogger with trace correlation.
package oteladapters
