package addbookcopy

import (
	"context"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell"
)

const (
	bookNotFound = "Book with ID '%s' was not found."
	barcodeTaken = "Book copy with barcode '%s' already exists."
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

func (h CommandHandler) Handle(ctx context.Context, command Command) entitystore.Result {
	if err := shell.Validate(command); err != nil {
		return shell.ResultFrom(err, nil)
	}

	err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return shell.InTransaction(retryCtx, h.uows, func(txCtx context.Context, uow *entitystore.UnitOfWork) error {
			return h.executeCommand(txCtx, uow, command)
		})
	}, h.retryOptions...)

	return shell.ResultFrom(err, func(err error) string {
		if entitystore.IsConstraintViolation(err) {
			return core.Violation(barcodeTaken, command.Barcode).Message
		}
		return ""
	})
}

func (h CommandHandler) executeCommand(ctx context.Context, uow *entitystore.UnitOfWork, command Command) error {
	_, bookExists, err := entitystore.RepositoryFor[core.Book](uow).GetByID(ctx, command.BookID)
	if err != nil {
		return err
	}

	if !bookExists {
		return core.Violation(bookNotFound, command.BookID)
	}

	bookCopy := core.BookCopy{ID: command.BookCopyID, BookID: command.BookID, Barcode: command.Barcode}
	if err = entitystore.RepositoryFor[core.BookCopy](uow).Add(bookCopy); err != nil {
		return err
	}

	return shell.Audit(uow, commandType, core.BookCopyEntityType, bookCopy.ID, command.OccurredAt)
}
