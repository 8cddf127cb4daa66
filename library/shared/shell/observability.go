package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

const (
	CommandHandlerDurationMetric          = "commandhandler_handle_duration_seconds"
	CommandHandlerCallsMetric             = "commandhandler_handle_calls_total"
	CommandHandlerRetriesMetric           = "commandhandler_retries_total"
	CommandHandlerRetryDelayMetric        = "commandhandler_retry_delay_seconds"
	CommandHandlerMaxRetriesReachedMetric = "commandhandler_max_retries_reached_total"
	QueryHandlerDurationMetric            = "queryhandler_handle_duration_seconds"
	QueryHandlerCallsMetric               = "queryhandler_handle_calls_total"

	StatusSuccess  = "success"
	StatusFailure  = "failure"
	StatusError    = "error"
	StatusCanceled = "canceled"
	StatusTimeout  = "timeout"

	LogMsgCommandStarted   = "command handler started"
	LogMsgCommandCompleted = "command handler completed"
	LogMsgCommandFailed    = "command handler failed"
	LogMsgQueryStarted     = "query handler started"
	LogMsgQueryCompleted   = "query handler completed"
	LogMsgQueryFailed      = "query handler failed"

	LogAttrCommandType  = "command_type"
	LogAttrQueryType    = "query_type"
	LogAttrStatus       = "status"
	LogAttrDurationMS   = "duration_ms"
	LogAttrErrorMessage = "error_message"
	LogAttrError        = "error"
	LogAttrErrorType    = "error_type"
	LogAttrAttemptCount = "attempt_number"

	SpanNameCommandHandle = "commandhandler.handle"
	SpanNameQueryHandle   = "queryhandler.handle"
)

func BuildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

func BuildQueryLabels(queryType, status string) map[string]string {
	return map[string]string{
		LogAttrQueryType: queryType,
		LogAttrStatus:    status,
	}
}

func BuildRetryLabels(commandType string, attemptNumber int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType:  commandType,
		LogAttrAttemptCount: strconv.Itoa(attemptNumber),
		LogAttrErrorType:    errorType,
	}
}

// CommandStatus classifies a command outcome. A failed Result after cancellation counts as canceled or timeout.
func CommandStatus(ctx context.Context, result entitystore.Result) string {
	if result.IsSuccess {
		return StatusSuccess
	}

	if status := contextStatus(ctx.Err()); status != "" {
		return status
	}

	return StatusFailure
}

// QueryStatus classifies a query outcome.
func QueryStatus(err error) string {
	if err == nil {
		return StatusSuccess
	}

	if status := contextStatus(err); status != "" {
		return status
	}

	return StatusError
}

func contextStatus(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return StatusCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return StatusTimeout
	default:
		return ""
	}
}

// RecordCommandMetrics records duration and call count of one command.
func RecordCommandMetrics(ctx context.Context, observer entitystore.Observer, commandType, status string, duration time.Duration) {
	labels := BuildCommandLabels(commandType, status)
	observer.RecordDuration(ctx, CommandHandlerDurationMetric, duration, labels)
	observer.IncrementCounter(ctx, CommandHandlerCallsMetric, labels)
}

// RecordQueryMetrics records duration and call count of one query.
func RecordQueryMetrics(ctx context.Context, observer entitystore.Observer, queryType, status string, duration time.Duration) {
	labels := BuildQueryLabels(queryType, status)
	observer.RecordDuration(ctx, QueryHandlerDurationMetric, duration, labels)
	observer.IncrementCounter(ctx, QueryHandlerCallsMetric, labels)
}

func StartCommandSpan(ctx context.Context, observer entitystore.Observer, commandType string) (context.Context, SpanContext) {
	return observer.StartSpan(ctx, SpanNameCommandHandle, map[string]string{LogAttrCommandType: commandType})
}

func StartQuerySpan(ctx context.Context, observer entitystore.Observer, queryType string) (context.Context, SpanContext) {
	return observer.StartSpan(ctx, SpanNameQueryHandle, map[string]string{LogAttrQueryType: queryType})
}

// FinishSpan completes a handler span. errorMessage may be empty.
func FinishSpan(observer entitystore.Observer, span SpanContext, status string, duration time.Duration, errorMessage string) {
	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: formatDurationMS(duration),
	}

	if errorMessage != "" {
		attrs[LogAttrError] = errorMessage
	}

	observer.FinishSpan(span, status, attrs)
}

func formatDurationMS(duration time.Duration) string {
	return fmt.Sprintf("%.2f", entitystore.ToMilliseconds(duration))
}
