package finesbymember

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
)

const (
	queryType = "FinesByMember"
)

// Query selects one page of a member's fines, newest first. An empty Status selects all fines.
type Query struct {
	MemberID uuid.UUID
	Status   core.FineStatus
	Page     entitystore.PagedRequest
}

func BuildQuery(memberID uuid.UUID, status core.FineStatus, pageNumber, pageSize int) Query {
	return Query{
		MemberID: memberID,
		Status:   status,
		Page:     entitystore.NewPagedRequest(pageNumber, pageSize),
	}
}

func (q Query) QueryType() string {
	return queryType
}
