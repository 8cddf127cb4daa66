package librarians

import (
	"github.com/AntonStoeckl/entitystore-go/entitystore"
)

const (
	queryType = "Librarians"
)

// Query selects one page of the active librarians.
type Query struct {
	Page entitystore.PagedRequest
}

// BuildQuery normalizes the raw paging parameters; a pageSize of 0 means the default page size.
func BuildQuery(pageNumber, pageSize int) Query {
	return Query{Page: entitystore.NewPagedRequest(pageNumber, pageSize)}
}

func (q Query) QueryType() string {
	return queryType
}
