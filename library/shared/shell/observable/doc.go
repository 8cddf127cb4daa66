// Package observable decorates command and query handlers with logging, metrics and tracing.
package observable
