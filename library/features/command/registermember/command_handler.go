package registermember

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell"
)

const (
	numberTaken = "Member with membership number '%s' already exists."
	emailTaken  = "Member with email '%s' already exists."
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
		var violation *entitystore.ConstraintViolationError
		if !errors.As(err, &violation) {
			return ""
		}
		if violation.Constraint == "email" {
			return core.Violation(emailTaken, command.Email).Message
		}
		return core.Violation(numberTaken, command.MembershipNumber).Message
	})
}

func (h CommandHandler) executeCommand(ctx context.Context, uow *entitystore.UnitOfWork, command Command) error {
	members := entitystore.RepositoryFor[core.Member](uow)

	taken, err := members.Exists(ctx,
		entitystore.IncludeDeleted[core.Member](),
		entitystore.Matching[core.Member](entitystore.P("membershipNumber", command.MembershipNumber)),
	)
	if err != nil {
		return err
	}

	if taken {
		return core.Violation(numberTaken, command.MembershipNumber)
	}

	member := core.Member{
		ID:               command.MemberID,
		MembershipNumber: command.MembershipNumber,
		Name:             command.Name,
		Email:            command.Email,
		RegisteredAt:     command.RegisteredAt,
	}

	if err = members.Add(member); err != nil {
		return err
	}

	return shell.Audit(uow, commandType, core.MemberEntityType, member.ID, command.RegisteredAt)
}
