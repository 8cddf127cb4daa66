package addbook

import (
	"context"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell"
)

const alreadyExists = "Book with ISBN '%s' already exists."

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

// Handle relies on the "isbn" unique key alone; there is no pre-check.
func (h CommandHandler) Handle(ctx context.Context, command Command) entitystore.Result {
	if err := shell.Validate(command); err != nil {
		return shell.ResultFrom(err, nil)
	}

	err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return shell.InTransaction(retryCtx, h.uows, func(_ context.Context, uow *entitystore.UnitOfWork) error {
			book := core.Book{
				ID:              command.BookID,
				ISBN:            command.ISBN,
				Title:           command.Title,
				Authors:         command.Authors,
				Edition:         command.Edition,
				Publisher:       command.Publisher,
				PublicationYear: command.PublicationYear,
			}

			if err := entitystore.RepositoryFor[core.Book](uow).Add(book); err != nil {
				return err
			}

			return shell.Audit(uow, commandType, core.BookEntityType, book.ID, command.OccurredAt)
		})
	}, h.retryOptions...)

	return shell.ResultFrom(err, func(err error) string {
		if entitystore.IsConstraintViolation(err) {
			return core.Violation(alreadyExists, command.ISBN).Message
		}
		return ""
	})
}
