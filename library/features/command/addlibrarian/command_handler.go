package addlibrarian

import (
	"context"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell"
)

const (
	alreadyExists   = "Librarian with employee ID '%s' already exists."
	idAlreadyExists = "Librarian with ID '%s' already exists."
)

// CommandHandler adds a librarian in one transaction: check, stage, audit, commit.
// External wrappers handle all observability concerns.
type CommandHandler struct {
	uows         shell.UnitOfWorkFactory
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(uows shell.UnitOfWorkFactory, opts ...Option) CommandHandler {
	handler := CommandHandler{uows: uows}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle validates the command and executes it with retry logic.
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
		cv, ok := entitystore.AsConstraintViolation(err)
		switch {
		case !ok:
			return ""
		case cv.Constraint == core.EmployeeIDConstraint:
			return core.Violation(alreadyExists, command.EmployeeID).Message
		default:
			return core.Violation(idAlreadyExists, command.LibrarianID).Message
		}
	})
}

func (h CommandHandler) executeCommand(ctx context.Context, uow *entitystore.UnitOfWork, command Command) error {
	librarians := entitystore.RepositoryFor[core.Librarian](uow)

	taken, err := librarians.Exists(ctx,
		entitystore.IncludeDeleted[core.Librarian](),
		entitystore.Matching[core.Librarian](entitystore.P("employeeId", command.EmployeeID)),
	)
	if err != nil {
		return err
	}

	if taken {
		return core.Violation(alreadyExists, command.EmployeeID)
	}

	librarian := core.Librarian{
		ID:         command.LibrarianID,
		EmployeeID: command.EmployeeID,
		Name:       command.Name,
		Email:      command.Email,
		HiredAt:    command.HiredAt,
	}

	if err = librarians.Add(librarian); err != nil {
		return err
	}

	return shell.Audit(uow, commandType, core.LibrarianEntityType, librarian.ID, command.HiredAt)
}
