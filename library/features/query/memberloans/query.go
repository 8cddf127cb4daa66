package memberloans

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

const (
	queryType = "MemberLoans"
)

// Query selects one page of a member's loans, most recent first.
type Query struct {
	MemberID   uuid.UUID
	ActiveOnly bool
	Page       entitystore.PagedRequest
}

func BuildQuery(memberID uuid.UUID, activeOnly bool, pageNumber, pageSize int) Query {
	return Query{
		MemberID:   memberID,
		ActiveOnly: activeOnly,
		Page:       entitystore.NewPagedRequest(pageNumber, pageSize),
	}
}

func (q Query) QueryType() string {
	return queryType
}
