package shell

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

// TransactionalFunc stages the changes of one use case on uow.
type TransactionalFunc func(ctx context.Context, uow *entitystore.UnitOfWork) error

// InTransaction runs fn in a fresh unit of work: begin, fn, SaveChanges, commit.
// When any step fails, the transaction is rolled back and the error of that step is returned.
func InTransaction(ctx context.Context, uows UnitOfWorkFactory, fn TransactionalFunc) error {
	uow := uows.New()
	defer func() { _ = uow.Close(context.WithoutCancel(ctx)) }()

	if err := uow.BeginTransaction(ctx); err != nil {
		return err
	}

	if err := fn(ctx, uow); err != nil {
		return rollback(ctx, uow, err)
	}

	if _, err := uow.SaveChanges(ctx); err != nil {
		return rollback(ctx, uow, err)
	}

	return uow.CommitTransaction(ctx)
}

// A transaction that was already rolled back after context cancellation is not an additional failure.
func rollback(ctx context.Context, uow *entitystore.UnitOfWork, cause error) error {
	err := uow.RollbackTransaction(context.WithoutCancel(ctx))
	if err != nil && !entitystore.IsInvalidTransactionState(err) {
		return errors.Join(cause, err)
	}

	return cause
}
