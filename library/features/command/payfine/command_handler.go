package payfine

import (
	"context"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell"
)

const (
	fineNotFound = "Fine with ID '%s' was not found."
	fineSettled  = "Fine with ID '%s' is already %s."
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

	return shell.ResultFrom(err, nil)
}

func (h CommandHandler) executeCommand(ctx context.Context, uow *entitystore.UnitOfWork, command Command) error {
	fines := entitystore.RepositoryFor[core.Fine](uow)

	fine, found, err := fines.GetByID(ctx, command.FineID)
	if err != nil {
		return err
	}
	if !found {
		return core.Violation(fineNotFound, command.FineID)
	}
	if fine.Status != core.FineUnpaid {
		return core.Violation(fineSettled, command.FineID, fine.Status)
	}

	if err = fines.Update(fine.Pay(command.PaidAt)); err != nil {
		return err
	}

	return shell.Audit(uow, commandType, core.FineEntityType, fine.ID, command.PaidAt)
}
