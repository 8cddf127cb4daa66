package removebookcopy

import (
	"context"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell"
)

const (
	copyNotFound = "Book copy with ID '%s' was not found."
	copyLentOut  = "Book copy '%s' is lent out and cannot be removed."
)

type CommandHandler struct {
	uows         shell.UnitOfWorkFactory
	retryOptions []shell.RetryOption
}

type Option func(*CommandHandler)

func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

func NewCommandHandler(uows shell.UnitOfWorkFactory, opts ...Option) CommandHandler {
	handler := CommandHandler{uows: uows}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle soft-deletes the copy. Removing an already removed copy is an idempotent success.
func (h CommandHandler) Handle(ctx context.Context, command Command) entitystore.Result {
	if err := shell.Validate(command); err != nil {
		return shell.ResultFrom(err, nil)
	}

	err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return shell.InTransaction(retryCtx, h.uows, func(txCtx context.Context, uow *entitystore.UnitOfWork) error {
			return h.executeCommand(txCtx, uow, command)
		})
	}, h.retryOptions...)

	return shell.ResultFrom(err, nil)
}

func (h CommandHandler) executeCommand(ctx context.Context, uow *entitystore.UnitOfWork, command Command) error {
	copies := entitystore.RepositoryFor[core.BookCopy](uow)

	bookCopy, found, err := copies.GetByID(ctx, command.BookCopyID, entitystore.IncludeDeleted[core.BookCopy]())
	if err != nil {
		return err
	}

	if !found {
		return core.Violation(copyNotFound, command.BookCopyID)
	}

	if bookCopy.Removed {
		return nil
	}

	lentOut, err := entitystore.RepositoryFor[core.Loan](uow).Exists(ctx, entitystore.Matching[core.Loan](
		entitystore.P("bookCopyId", command.BookCopyID.String()),
		entitystore.P("status", string(core.LoanActive)),
	))
	if err != nil {
		return err
	}

	if lentOut {
		return core.Violation(copyLentOut, bookCopy.Barcode)
	}

	bookCopy.Removed = true
	if err = copies.Update(bookCopy); err != nil {
		return err
	}

	return shell.Audit(uow, commandType, core.BookCopyEntityType, bookCopy.ID, command.OccurredAt)
}
