// Package promadapters provides a Prometheus implementation of entitystore.MetricsCollector.
package promadapters
