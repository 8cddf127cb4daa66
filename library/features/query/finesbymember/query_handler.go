package finesbymember

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

// Handle pushes the member and status filters down to the engine as payload predicates.
func (h QueryHandler) Handle(ctx context.Context, query Query) (FinesByMember, error) {
	ctx = entitystore.WithEventualConsistency(ctx)

	uow := h.uows.New()
	defer func() { _ = uow.Close(ctx) }()

	fines := entitystore.RepositoryFor[core.Fine](uow)
	byMember := entitystore.P("memberId", query.MemberID.String())

	predicates := []entitystore.FilterPredicate{byMember}
	if query.Status != "" {
		predicates = append(predicates, entitystore.P("status", string(query.Status)))
	}

	page, err := fines.PagedList(ctx, query.Page,
		entitystore.Matching[core.Fine](predicates...),
		entitystore.OrderBy(func(a, b core.Fine) bool { return a.IssuedAt.After(b.IssuedAt) }),
	)
	if err != nil {
		return FinesByMember{}, err
	}

	unpaid, err := fines.List(ctx,
		entitystore.Matching[core.Fine](byMember, entitystore.P("status", string(core.FineUnpaid))))
	if err != nil {
		return FinesByMember{}, err
	}

	return FinesByMember{
		Fines:       page,
		UnpaidTotal: core.UnpaidTotal(unpaid),
		MayBorrow:   core.MayBorrow(unpaid),
	}, nil
}
