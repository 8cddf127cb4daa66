package reservebook

import (
	"context"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell"
)

const (
	bookNotFound    = "Book with ID '%s' was not found."
	memberNotFound  = "Member with ID '%s' was not found."
	alreadyReserved = "Member '%s' already has a pending reservation for book '%s'."
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

// Handle relies on the "pending_member_book" unique key to refuse a second pending reservation.
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
			return core.Violation(alreadyReserved, command.MemberID, command.BookID).Message
		}
		return ""
	})
}

func (h CommandHandler) executeCommand(ctx context.Context, uow *entitystore.UnitOfWork, command Command) error {
	if _, found, err := entitystore.RepositoryFor[core.Book](uow).GetByID(ctx, command.BookID); err != nil || !found {
		if err != nil {
			return err
		}
		return core.Violation(bookNotFound, command.BookID)
	}

	if _, found, err := entitystore.RepositoryFor[core.Member](uow).GetByID(ctx, command.MemberID); err != nil || !found {
		if err != nil {
			return err
		}
		return core.Violation(memberNotFound, command.MemberID)
	}

	reservation := core.Reservation{
		ID:         command.ReservationID,
		BookID:     command.BookID,
		MemberID:   command.MemberID,
		ReservedAt: command.ReservedAt,
		Status:     core.ReservationPending,
	}
	if err := entitystore.RepositoryFor[core.Reservation](uow).Add(reservation); err != nil {
		return err
	}

	return shell.Audit(uow, commandType, core.ReservationEntityType, reservation.ID, command.ReservedAt)
}
