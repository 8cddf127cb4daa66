package lendbookcopy

import (
	"context"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell"
)

const (
	copyNotFound   = "Book copy with ID '%s' was not found."
	memberNotFound = "Member with ID '%s' was not found."
	alreadyLent    = "Book copy '%s' is already lent out."
	finesTooHigh   = "Member '%s' has unpaid fines of %s and may not borrow."
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
		if entitystore.IsConstraintViolation(err) {
			return core.Violation(alreadyLent, command.BookCopyID).Message
		}
		return ""
	})
}

func (h CommandHandler) executeCommand(ctx context.Context, uow *entitystore.UnitOfWork, command Command) error {
	bookCopy, found, err := entitystore.RepositoryFor[core.BookCopy](uow).GetByID(ctx, command.BookCopyID)
	if err != nil {
		return err
	}
	if !found {
		return core.Violation(copyNotFound, command.BookCopyID)
	}

	member, found, err := entitystore.RepositoryFor[core.Member](uow).GetByID(ctx, command.MemberID)
	if err != nil {
		return err
	}
	if !found {
		return core.Violation(memberNotFound, command.MemberID)
	}

	loans := entitystore.RepositoryFor[core.Loan](uow)

	lentOut, err := loans.Exists(ctx, entitystore.Matching[core.Loan](
		entitystore.P("bookCopyId", bookCopy.ID.String()),
		entitystore.P("status", string(core.LoanActive)),
	))
	if err != nil {
		return err
	}
	if lentOut {
		return core.Violation(alreadyLent, bookCopy.ID)
	}

	fines, err := entitystore.RepositoryFor[core.Fine](uow).List(ctx, entitystore.Matching[core.Fine](
		entitystore.P("memberId", member.ID.String()),
		entitystore.P("status", string(core.FineUnpaid)),
	))
	if err != nil {
		return err
	}
	if !core.MayBorrow(fines) {
		return core.Violation(finesTooHigh, member.MembershipNumber, core.UnpaidTotal(fines).StringFixed(2))
	}

	loan := core.Loan{
		ID:         command.LoanID,
		BookCopyID: bookCopy.ID,
		MemberID:   member.ID,
		LentAt:     command.LentAt,
		DueAt:      command.DueAt,
		Status:     core.LoanActive,
	}
	if err = loans.Add(loan); err != nil {
		return err
	}

	if err = fulfillReservation(ctx, uow, bookCopy, member); err != nil {
		return err
	}

	return shell.Audit(uow, commandType, core.LoanEntityType, loan.ID, command.LentAt)
}

func fulfillReservation(ctx context.Context, uow *entitystore.UnitOfWork, bookCopy core.BookCopy, member core.Member) error {
	reservations := entitystore.RepositoryFor[core.Reservation](uow)

	reservation, found, err := reservations.GetOne(ctx, entitystore.Matching[core.Reservation](
		entitystore.P("bookId", bookCopy.BookID.String()),
		entitystore.P("memberId", member.ID.String()),
		entitystore.P("status", string(core.ReservationPending)),
	))
	if err != nil || !found {
		return err
	}

	reservation.Status = core.ReservationFulfilled

	return reservations.Update(reservation)
}
