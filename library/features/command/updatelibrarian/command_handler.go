package updatelibrarian

import (
	"context"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell"
)

const (
	notFound      = "Librarian with ID '%s' was not found."
	alreadyExists = "Librarian with employee ID '%s' already exists."
)

// CommandHandler updates a librarian. The update is staged even when the librarian is not loaded,
// so a missing identity surfaces as entitystore.NotFoundError when the changes are flushed.
// A soft-deleted librarian is reported as not found.
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
		switch {
		case entitystore.IsNotFound(err):
			return core.Violation(notFound, command.LibrarianID).Message
		case entitystore.IsConstraintViolation(err):
			return core.Violation(alreadyExists, command.EmployeeID).Message
		default:
			return ""
		}
	})
}

func (h CommandHandler) executeCommand(ctx context.Context, uow *entitystore.UnitOfWork, command Command) error {
	librarians := entitystore.RepositoryFor[core.Librarian](uow)

	librarian, _, err := librarians.GetByID(ctx, command.LibrarianID, entitystore.IncludeDeleted[core.Librarian]())
	if err != nil {
		return err
	}

	if librarian.Deleted {
		return core.Violation(notFound, command.LibrarianID)
	}

	librarian.ID = command.LibrarianID
	librarian.EmployeeID = command.EmployeeID
	librarian.Name = command.Name
	librarian.Email = command.Email

	if err = librarians.Update(librarian); err != nil {
		return err
	}

	return shell.Audit(uow, commandType, core.LibrarianEntityType, librarian.ID, command.OccurredAt)
}
