package issuefine

import (
	"context"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell"
)

const (
	memberNotFound    = "Member with ID '%s' was not found."
	loanNotFound      = "Loan with ID '%s' was not found."
	amountNotPositive = "Fine amount must be positive."
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

	if !command.Amount.IsPositive() {
		return entitystore.Failure(amountNotPositive)
	}

	err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return shell.InTransaction(retryCtx, h.uows, func(txCtx context.Context, uow *entitystore.UnitOfWork) error {
			return h.executeCommand(txCtx, uow, command)
		})
	}, h.retryOptions...)

	return shell.ResultFrom(err, nil)
}

func (h CommandHandler) executeCommand(ctx context.Context, uow *entitystore.UnitOfWork, command Command) error {
	_, found, err := entitystore.RepositoryFor[core.Member](uow).GetByID(ctx, command.MemberID)
	if err != nil {
		return err
	}
	if !found {
		return core.Violation(memberNotFound, command.MemberID)
	}

	if command.LoanID != uuid.Nil {
		exists, err := entitystore.RepositoryFor[core.Loan](uow).Exists(ctx, entitystore.Matching[core.Loan](
			entitystore.P("memberId", command.MemberID.String()),
		), entitystore.Where(func(l core.Loan) bool { return l.ID == command.LoanID }))
		if err != nil {
			return err
		}
		if !exists {
			return core.Violation(loanNotFound, command.LoanID)
		}
	}

	fine := core.Fine{
		ID:       command.FineID,
		MemberID: command.MemberID,
		LoanID:   command.LoanID,
		Amount:   command.Amount,
		Reason:   command.Reason,
		IssuedAt: command.IssuedAt,
		Status:   core.FineUnpaid,
	}
	if err = entitystore.RepositoryFor[core.Fine](uow).Add(fine); err != nil {
		return err
	}

	return shell.Audit(uow, commandType, core.FineEntityType, fine.ID, command.IssuedAt)
}
