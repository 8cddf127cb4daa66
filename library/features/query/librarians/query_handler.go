package librarians

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

// Handle reads with eventual consistency; a slightly stale listing is acceptable.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Librarians, error) {
	ctx = entitystore.WithEventualConsistency(ctx)

	uow := h.uows.New()
	defer func() { _ = uow.Close(ctx) }()

	page, err := entitystore.RepositoryFor[core.Librarian](uow).PagedList(ctx, query.Page,
		entitystore.OrderBy(func(a, b core.Librarian) bool { return a.Name < b.Name }),
		entitystore.ThenBy(func(a, b core.Librarian) bool { return a.EmployeeID < b.EmployeeID }),
	)
	if err != nil {
		return Librarians{}, err
	}

	return entitystore.MapPagedResult(page, func(l core.Librarian) LibrarianInfo {
		return LibrarianInfo{
			LibrarianID: l.ID,
			EmployeeID:  l.EmployeeID,
			Name:        l.Name,
			Email:       l.Email,
			HiredAt:     l.HiredAt,
		}
	}), nil
}
