package registeruser

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell"
)

const usernameTaken = "User '%s' already exists."

type CommandHandler struct {
	uows         shell.UnitOfWorkFactory
	hashCost     int
	retryOptions []shell.RetryOption
}

type Option func(*CommandHandler)

func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// WithHashCost sets the bcrypt cost. The default is bcrypt.DefaultCost.
func WithHashCost(cost int) Option {
	return func(h *CommandHandler) {
		h.hashCost = cost
	}
}

func NewCommandHandler(uows shell.UnitOfWorkFactory, opts ...Option) CommandHandler {
	handler := CommandHandler{uows: uows, hashCost: bcrypt.DefaultCost}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle hashes the password once, outside the retried transaction.
func (h CommandHandler) Handle(ctx context.Context, command Command) entitystore.Result {
	if err := shell.Validate(command); err != nil {
		return shell.ResultFrom(err, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(command.Password), h.hashCost)
	if err != nil {
		return shell.ResultFrom(err, nil)
	}

	user := core.User{
		ID:           command.UserID,
		Username:     command.Username,
		PasswordHash: string(hash),
		Role:         core.Role(command.Role),
		CreatedAt:    command.CreatedAt,
	}

	err = shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return shell.InTransaction(retryCtx, h.uows, func(_ context.Context, uow *entitystore.UnitOfWork) error {
			if err := entitystore.RepositoryFor[core.User](uow).Add(user); err != nil {
				return err
			}
			return shell.Audit(uow, commandType, core.UserEntityType, user.ID, command.CreatedAt)
		})
	}, h.retryOptions...)

	return shell.ResultFrom(err, func(err error) string {
		if entitystore.IsConstraintViolation(err) {
			return core.Violation(usernameTaken, command.Username).Message
		}
		return ""
	})
}
