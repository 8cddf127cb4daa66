package observable

import (
	"context"
	"time"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell"
)

// CommandWrapper instruments a command handler. Business logic stays in the wrapped handler.
type CommandWrapper[C shell.Command] struct {
	coreHandler shell.CommandHandler[C]
	commandType string
	observer    entitystore.Observer
}

// NewCommandWrapper wraps coreHandler. The command type is taken from the zero value of C.
func NewCommandWrapper[C shell.Command](coreHandler shell.CommandHandler[C], opts ...Option) *CommandWrapper[C] {
	var zeroCommand C

	return &CommandWrapper[C]{
		coreHandler: coreHandler,
		commandType: zeroCommand.CommandType(),
		observer:    buildObserver(opts),
	}
}

// Handle delegates to the wrapped handler and records the outcome.
func (w *CommandWrapper[C]) Handle(ctx context.Context, command C) entitystore.Result {
	start := time.Now()
	ctx, span := shell.StartCommandSpan(ctx, w.observer, w.commandType)
	w.observer.Info(ctx, shell.LogMsgCommandStarted, shell.LogAttrCommandType, w.commandType)

	result := w.coreHandler.Handle(ctx, command)

	duration := time.Since(start)
	status := shell.CommandStatus(ctx, result)
	shell.RecordCommandMetrics(ctx, w.observer, w.commandType, status, duration)
	shell.FinishSpan(w.observer, span, status, duration, result.ErrorMessage)

	if result.IsFailure() {
		w.observer.Warn(ctx, shell.LogMsgCommandFailed,
			shell.LogAttrCommandType, w.commandType,
			shell.LogAttrStatus, status,
			shell.LogAttrErrorMessage, result.ErrorMessage,
			shell.LogAttrDurationMS, entitystore.ToMilliseconds(duration))

		return result
	}

	w.observer.Info(ctx, shell.LogMsgCommandCompleted,
		shell.LogAttrCommandType, w.commandType,
		shell.LogAttrStatus, status,
		shell.LogAttrDurationMS, entitystore.ToMilliseconds(duration))

	return result
}
