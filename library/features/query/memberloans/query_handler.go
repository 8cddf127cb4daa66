package memberloans

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

func (h QueryHandler) Handle(ctx context.Context, query Query) (MemberLoans, error) {
	ctx = entitystore.WithEventualConsistency(ctx)

	uow := h.uows.New()
	defer func() { _ = uow.Close(ctx) }()

	predicates := []entitystore.FilterPredicate{entitystore.P("memberId", query.MemberID.String())}
	if query.ActiveOnly {
		predicates = append(predicates, entitystore.P("status", string(core.LoanActive)))
	}

	page, err := entitystore.RepositoryFor[core.Loan](uow).PagedList(ctx, query.Page,
		entitystore.Matching[core.Loan](predicates...),
		entitystore.OrderBy(func(a, b core.Loan) bool { return a.LentAt.After(b.LentAt) }),
		entitystore.Include[core.Loan](core.RelationBookCopy),
	)
	if err != nil {
		return MemberLoans{}, err
	}

	return entitystore.MapPagedResult(page, func(l core.Loan) LoanInfo {
		info := LoanInfo{
			LoanID:     l.ID,
			BookCopyID: l.BookCopyID,
			LentAt:     l.LentAt,
			DueAt:      l.DueAt,
			ReturnedAt: l.ReturnedAt,
			Status:     l.Status,
		}
		if l.BookCopy != nil {
			info.Barcode = l.BookCopy.Barcode
		}
		return info
	}), nil
}
