package returnbookcopy

import (
	"context"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell"
)

const (
	notLent       = "Book copy '%s' is not lent out."
	overdueReason = "overdue return"
)

// CommandHandler closes the active loan of a copy and issues an overdue fine for a late return.
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

	return shell.ResultFrom(err, nil)
}

func (h CommandHandler) executeCommand(ctx context.Context, uow *entitystore.UnitOfWork, command Command) error {
	loans := entitystore.RepositoryFor[core.Loan](uow)

	loan, found, err := loans.GetOne(ctx, entitystore.Matching[core.Loan](
		entitystore.P("bookCopyId", command.BookCopyID.String()),
		entitystore.P("status", string(core.LoanActive)),
	))
	if err != nil {
		return err
	}
	if !found {
		return core.Violation(notLent, command.BookCopyID)
	}

	loan = loan.Return(command.ReturnedAt)
	if err = loans.Update(loan); err != nil {
		return err
	}

	if amount := core.OverdueFine(loan.DueAt, command.ReturnedAt); amount.IsPositive() {
		fine := core.Fine{
			ID:       uuid.Must(uuid.NewV7()),
			MemberID: loan.MemberID,
			LoanID:   loan.ID,
			Amount:   amount,
			Reason:   overdueReason,
			IssuedAt: command.ReturnedAt,
			Status:   core.FineUnpaid,
		}
		if err = entitystore.RepositoryFor[core.Fine](uow).Add(fine); err != nil {
			return err
		}
	}

	return shell.Audit(uow, commandType, core.LoanEntityType, loan.ID, command.ReturnedAt)
}
