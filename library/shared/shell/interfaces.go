package shell

import (
	"context"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

type (
	MetricsCollector           = entitystore.MetricsCollector
	ContextualMetricsCollector = entitystore.ContextualMetricsCollector
	TracingCollector           = entitystore.TracingCollector
	SpanContext                = entitystore.SpanContext
	ContextualLogger           = entitystore.ContextualLogger
	Logger                     = entitystore.Logger
)

// Command is the input of one write use case.
type Command interface {
	CommandType() string
}

// CommandHandler executes a Command and reports the outcome as a Result.
type CommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) entitystore.Result
}

// Query is the input of one read use case.
type Query interface {
	QueryType() string
}

// QueryHandler answers a Query.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

// UnitOfWorkFactory creates the unit of work of one handler invocation.
// entitystore.UnitOfWorkFactory implements it.
type UnitOfWorkFactory interface {
	New() *entitystore.UnitOfWork
}
