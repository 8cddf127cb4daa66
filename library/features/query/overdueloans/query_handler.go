package overdueloans

import (
	"context"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
	"github.com/AntonStoeckl/entitystore-go/library/shared/shell"
)

type QueryHandler struct {
	uows shell.UnitOfWorkFactory
}

func NewQueryHandler(uows shell.UnitOfWorkFactory) QueryHandler {
	return QueryHandler{uows: uows}
}

func (h QueryHandler) Handle(ctx context.Context, query Query) (OverdueLoans, error) {
	ctx = entitystore.WithEventualConsistency(ctx)

	uow := h.uows.New()
	defer func() { _ = uow.Close(ctx) }()

	loans, err := entitystore.RepositoryFor[core.Loan](uow).List(ctx,
		entitystore.Matching[core.Loan](entitystore.P("status", string(core.LoanActive))),
		entitystore.Where(func(l core.Loan) bool { return l.IsOverdue(query.AsOf) }),
		entitystore.OrderBy(func(a, b core.Loan) bool { return a.DueAt.Before(b.DueAt) }),
		entitystore.Include[core.Loan](core.RelationBookCopy, core.RelationMember),
	)
	if err != nil {
		return OverdueLoans{}, err
	}

	result := OverdueLoans{Loans: make([]OverdueLoanInfo, 0, len(loans)), Count: len(loans)}
	for _, loan := range loans {
		info := OverdueLoanInfo{
			LoanID:      loan.ID,
			BookCopyID:  loan.BookCopyID,
			MemberID:    loan.MemberID,
			DueAt:       loan.DueAt,
			AccruedFine: core.OverdueFine(loan.DueAt, query.AsOf),
		}
		if loan.BookCopy != nil {
			info.Barcode = loan.BookCopy.Barcode
		}
		if loan.Member != nil {
			info.MembershipNumber = loan.Member.MembershipNumber
			info.MemberName = loan.Member.Name
		}
		result.Loans = append(result.Loans, info)
	}

	return result, nil
}
